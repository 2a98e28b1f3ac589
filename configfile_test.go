package nicelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, "log.yaml", `
loggers:
  app:
    level: debug
    file: app.log
    path: /var/log/app
    format: "%(asctime)s %(message)s"
    mode: W
    time_layout: rfc3339
  worker:
    fields: [name, levelname, message, job_id]
  plain:
    mode: a
`)
	configs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("expected 3 loggers, got %d", len(configs))
	}

	app := configs["app"]
	if app.Name() != "app" || app.Level() != LevelDebug || app.FilePath() != filepath.Join("/var/log/app", "app.log") {
		t.Errorf("unexpected app config: %+v", app)
	}
	if app.Formatter() != "%(asctime)s %(message)s" || app.Mode() != ModeOverwrite || app.TimeLayout() != "rfc3339" {
		t.Errorf("unexpected app config: %+v", app)
	}

	worker := configs["worker"]
	if want := "%(name)s %(levelname)s %(message)s %(job_id)s"; worker.Formatter() != want {
		t.Errorf("worker formatter = %q, want %q", worker.Formatter(), want)
	}
	if worker.LogPath() != DefaultLogPath || worker.Mode() != DefaultMode {
		t.Errorf("worker should keep defaults: %+v", worker)
	}

	if plain := configs["plain"]; plain.Formatter() != DefaultFormatter || plain.Level() != DefaultLevel {
		t.Errorf("plain should keep defaults: %+v", plain)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeConfig(t, "log.json", `{"loggers": {"svc": {"level": "warning", "path": ""}}}`)
	configs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	svc := configs["svc"]
	if svc.Level() != LevelWarning || svc.LogPath() != "" {
		t.Errorf("unexpected svc config: %+v", svc)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("bad mode", func(t *testing.T) {
		path := writeConfig(t, "log.yaml", "loggers:\n  app:\n    mode: x\n")
		_, err := LoadFile(path)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if !strings.Contains(err.Error(), `logger "app"`) {
			t.Errorf("error should name the logger: %v", err)
		}
	})
	t.Run("bad level", func(t *testing.T) {
		path := writeConfig(t, "log.yaml", "loggers:\n  app:\n    level: loud\n")
		if _, err := LoadFile(path); err == nil {
			t.Error("expected error")
		}
	})
}
