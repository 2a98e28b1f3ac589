package nicelog

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s not to exist, stat error: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestAcquire_FileEndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	cfg, err := New("e2e",
		WithLogFile("test.log"),
		WithLogPath(dir),
		WithMode("a"),
		WithFormatter(BuildFormat(LevelName())),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	assertNotExist(t, dir)

	log, err := NewRegistry().Acquire(cfg)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	log.Error("disk full")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := readFile(t, filepath.Join(dir, "test.log"))
	if !regexp.MustCompile(`^ERROR disk full\n$`).MatchString(got) {
		t.Errorf("log file content = %q", got)
	}
}

func TestAcquire_Modes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	acquire := func(mode string) {
		cfg, err := New("modes", WithLogFile("m.log"), WithLogPath(dir), WithMode(mode), WithFormatter("%(message)s"))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		log, err := r.Acquire(cfg)
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		log.Info(mode)
		if err := log.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	acquire("A")
	if got := readFile(t, path); got != "old\nA\n" {
		t.Errorf("after append: %q", got)
	}
	acquire("w")
	if got := readFile(t, path); got != "w\n" {
		t.Errorf("after overwrite: %q", got)
	}
}

func TestAcquire_NoDuplicateHandlers(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New("dup", WithLogFile("dup.log"), WithLogPath(dir), WithFormatter("%(message)s"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r := NewRegistry()
	first, err := r.Acquire(cfg)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	second, err := r.Acquire(cfg)
	if err != nil {
		t.Fatalf("acquire again: %v", err)
	}
	if first != second {
		t.Error("expected the same logger for the same name")
	}
	if n := len(second.Handlers()); n != 1 {
		t.Fatalf("expected exactly one handler, got %d", n)
	}
	first.Info("once")
	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "dup.log")); got != "once\n" {
		t.Errorf("log file content = %q", got)
	}
}

func TestAcquire_ReplacedFileIsClosed(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()
	cfg, _ := New("swap", WithLogFile("one.log"), WithLogPath(dir))
	log, err := r.Acquire(cfg)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	old := log.Handlers()[0]
	if old.Path() != filepath.Join(dir, "one.log") {
		t.Errorf("handler path = %q", old.Path())
	}

	var buf bytes.Buffer
	cfg2, _ := cfg.With(WithLogFile(""), WithConsole(&buf), WithFormatter("%(message)s"))
	if _, err := r.Acquire(cfg2); err != nil {
		t.Fatalf("acquire console: %v", err)
	}
	if !old.out.closed {
		t.Error("replaced file handler was not closed")
	}
	log.Info("to console")
	if buf.String() != "to console\n" {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestAcquire_PermissionError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("directory", func(t *testing.T) {
		logPath := filepath.Join(blocker, "logs")
		cfg, _ := New("perm-dir", WithLogFile("x.log"), WithLogPath(logPath))
		_, err := NewRegistry().Acquire(cfg)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *PermissionError, got %v", err)
		}
		if perr.Path != logPath || !strings.Contains(err.Error(), logPath) {
			t.Errorf("error does not name the attempted path: %v", err)
		}
		if errors.Unwrap(err) == nil {
			t.Error("expected the OS error to be wrapped")
		}
	})

	t.Run("file", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(dir, "taken.log"), 0o755); err != nil {
			t.Fatal(err)
		}
		cfg, _ := New("perm-file", WithLogFile("taken.log"), WithLogPath(dir))
		_, err := NewRegistry().Acquire(cfg)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *PermissionError, got %v", err)
		}
		if perr.Path != filepath.Join(dir, "taken.log") {
			t.Errorf("path = %q", perr.Path)
		}
	})
}

func TestAcquire_FailureKeepsPreviousHandler(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry()
	good, _ := New("keep", WithConsole(&buf), WithFormatter("%(levelname)s %(message)s"))
	log, err := r.Acquire(good)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	bad, _ := good.With(WithLevel(LevelCritical), WithLogFile("x.log"), WithLogPath(filepath.Join(blocker, "sub")))
	if _, err := r.Acquire(bad); err == nil {
		t.Fatal("expected acquisition to fail")
	}

	if n := len(log.Handlers()); n != 1 {
		t.Fatalf("expected previous handler to remain, got %d handlers", n)
	}
	if log.Level() != LevelInfo {
		t.Errorf("threshold changed to %s on failure", log.Level().Name())
	}
	log.Info("still here")
	if buf.String() != "INFO still here\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAcquire_ThresholdUpdatesExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry()
	cfg, _ := New("thresh", WithConsole(&buf), WithFormatter("%(message)s"), WithLevel(LevelDebug))
	log, _ := r.Acquire(cfg)
	child := log.With("k", "v")

	cfg, _ = cfg.With(WithLevel(LevelError))
	if _, err := r.Acquire(cfg); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	child.Warn("dropped")
	child.Error("kept")
	if buf.String() != "kept\n" {
		t.Errorf("output = %q", buf.String())
	}
	if log.Level() != LevelError {
		t.Errorf("level = %s", log.Level().Name())
	}
}

func TestAcquire_Concurrent(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()
	cfg, _ := New("race", WithLogFile("race.log"), WithLogPath(dir), WithFormatter("%(message)s"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log, err := r.Acquire(cfg)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			log.Info("x")
		}()
	}
	wg.Wait()

	log := r.Get("race")
	if n := len(log.Handlers()); n != 1 {
		t.Errorf("expected one handler after concurrent acquisition, got %d", n)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	lines := strings.Count(readFile(t, filepath.Join(dir, "race.log")), "x\n")
	if lines == 0 || lines > 16 {
		t.Errorf("unexpected number of lines: %d", lines)
	}
}

func TestLogger_Critical(t *testing.T) {
	var buf bytes.Buffer
	cfg, _ := New("crit", WithConsole(&buf), WithFormatter("%(levelname)s %(levelno)d %(funcName)s %(message)s"))
	log, _ := NewRegistry().Acquire(cfg)

	log.Critical("meltdown", "core", 4)
	log.CriticalContext(context.Background(), "again")

	want := "CRITICAL 50 TestLogger_Critical meltdown\nCRITICAL 50 TestLogger_Critical again\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLogger_CloseFallsBackToLastResort(t *testing.T) {
	var last bytes.Buffer
	saved := lastResort
	lastResort = newHandler(Config{formatter: "%(message)s"}, LevelWarning, &last, nil)
	defer func() { lastResort = saved }()

	var buf bytes.Buffer
	cfg, _ := New("closed", WithConsole(&buf), WithFormatter("%(message)s"), WithLevel(LevelDebug))
	log, _ := NewRegistry().Acquire(cfg)
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := len(log.Handlers()); n != 0 {
		t.Errorf("expected no handlers after close, got %d", n)
	}

	log.Info("quiet")
	log.Warn("loud")
	if buf.Len() != 0 {
		t.Errorf("closed handler received output: %q", buf.String())
	}
	if last.String() != "loud\n" {
		t.Errorf("last resort output = %q", last.String())
	}
}

func TestRegistry_GetNamesReset(t *testing.T) {
	r := NewRegistry()
	b := r.Get("b")
	if r.Get("b") != b {
		t.Error("Get returned a different logger for the same name")
	}
	if b.Name() != "b" {
		t.Errorf("name = %q", b.Name())
	}
	cfg, _ := New("a", WithLogFile("a.log"), WithLogPath(t.TempDir()))
	a, err := r.Acquire(cfg)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if names := r.Names(); strings.Join(names, ",") != "a,b" {
		t.Errorf("names = %v", names)
	}

	h := a.Handlers()[0]
	if err := r.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(r.Names()) != 0 {
		t.Error("registry not empty after reset")
	}
	if !h.out.closed {
		t.Error("reset did not close file handler")
	}
	if r.Get("a") == a {
		t.Error("expected a new identity after reset")
	}
}

func TestConfig_LoggerUsesDefaultRegistry(t *testing.T) {
	t.Cleanup(func() { _ = Default().Reset() })

	var buf bytes.Buffer
	cfg, _ := New("default-registry", WithConsole(&buf), WithFormatter("%(name)s:%(message)s"))
	log, err := cfg.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if Default().Get("default-registry") != log {
		t.Error("logger not registered in default registry")
	}
	log.Info("hi")
	if buf.String() != "default-registry:hi\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestContext(t *testing.T) {
	log := NewRegistry().Get("ctx")
	ctx := NewContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Error("FromContext did not return the stored logger")
	}

	saved := lastResort
	lastResort = newHandler(Config{formatter: "%(message)s"}, LevelWarning, new(bytes.Buffer), nil)
	defer func() { lastResort = saved }()
	t.Cleanup(func() { _ = Default().Reset() })
	if got := FromContext(context.Background()); got.Name() != "root" {
		t.Errorf("fallback logger name = %q", got.Name())
	}
}
