package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if config != DefaultConfig() {
		t.Errorf("LoadConfig = %+v, want defaults %+v", config, DefaultConfig())
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	yamlContent := `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", config.Level)
	}
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled should keep its default when the key is absent")
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.FileEnabled || config.FilePath != "test.log" {
		t.Errorf("file output = %v %q, want true test.log", config.FileEnabled, config.FilePath)
	}
	if config.FileMaxSizeMB != 20 {
		t.Errorf("FileMaxSizeMB = %d, want 20", config.FileMaxSizeMB)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/custom/path.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", config.Level)
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FilePath != "/custom/path.log" {
		t.Errorf("FilePath = %q, want /custom/path.log", config.FilePath)
	}
}

func TestSetOutputText(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", slog.LevelInfo)

	Info("level generated", "seed", 49380)
	Debug("hidden")

	output := buf.String()
	if !strings.Contains(output, "level generated") || !strings.Contains(output, "seed=49380") {
		t.Errorf("unexpected output: %s", output)
	}
	if strings.Contains(output, "hidden") {
		t.Errorf("debug message logged at INFO: %s", output)
	}
}

func TestSetOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json", slog.LevelInfo)

	Warningf("retry %d of %d", 2, 5)

	output := buf.String()
	if !strings.Contains(output, `"msg":"retry 2 of 5"`) {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestAuditBypassesLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", slog.LevelError)

	Info("not shown")
	Audit("level complete", "session", "abc")

	output := buf.String()
	if strings.Contains(output, "not shown") {
		t.Error("INFO appeared when level is ERROR")
	}
	if !strings.Contains(output, "level=AUDIT") || !strings.Contains(output, "session=abc") {
		t.Errorf("audit record missing: %s", output)
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	set(slog.New(h))

	Info("only first", "field", "value")
	Error("both")

	if !strings.Contains(buf1.String(), "field=value") || !strings.Contains(buf1.String(), "both") {
		t.Errorf("first handler output: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "only first") || !strings.Contains(buf2.String(), "both") {
		t.Errorf("second handler output: %s", buf2.String())
	}
}

func TestInitializeFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	config := DefaultConfig()
	config.ConsoleEnabled = false
	config.FileEnabled = true
	config.FilePath = path

	if err := Initialize(config); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing message: %s", data)
	}
	Discard()
}

func TestNilLogger(t *testing.T) {
	set(nil)
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("logging with nil logger panicked: %v", r)
		}
	}()
	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Audit("audit")
	if Logger() == nil {
		t.Error("Logger() should fall back to slog.Default")
	}
}
