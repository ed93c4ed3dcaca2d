package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dogtail/celerymetrics/pkg/output"
)

const sampleLog = `[2013-02-09 15:20:43,779: INFO/MainProcess] Task entity.tasks.add_love[c8411104-ee40-49e8-ab4d-af1be60f93aa] succeeded in 0.169150829315s: None
[2015-07-20 18:25:59,371: INFO/MainProcess] Received task: appratings.tasks.add[6cd42812-7a9e-49d5-9bbd-1174233441cb]
[2013-02-06 14:02:02,435: WARNING/MainProcess] len() on an unsliced queryset is not allowed
Traceback (most recent call last):
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create log file: %v", err)
	}
	return path
}

func TestNewClassifyCommand(t *testing.T) {
	cmd := NewClassifyCommand()

	if cmd.Use != "classify [log-file...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	// Check flags exist
	flags := []string{"config", "output", "timezone", "metric-prefix", "verbose", "quiet",
		"collector-url", "collector-token", "collector-trigger"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewTailCommand(t *testing.T) {
	cmd := NewTailCommand()

	if cmd.Use != "tail <log-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"config", "output", "timezone", "from-start", "collector-url"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewSelfTestCommand(t *testing.T) {
	cmd := NewSelfTestCommand()

	if cmd.Use != "selftest" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
}

func TestRunClassify_File(t *testing.T) {
	logPath := writeLog(t, sampleLog)

	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{"--timezone", "utc", "-o", "json", logPath})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if report.Summary.LinesProcessed != 4 {
		t.Errorf("LinesProcessed = %d, want 4", report.Summary.LinesProcessed)
	}
	if report.Summary.SamplesEmitted != 3 {
		t.Errorf("SamplesEmitted = %d, want 3", report.Summary.SamplesEmitted)
	}
	if report.Summary.LinesUnmatched != 1 {
		t.Errorf("LinesUnmatched = %d, want 1", report.Summary.LinesUnmatched)
	}
	if report.Summary.ByMetric["celery.success.entity.tasks.add_love"] != 1 {
		t.Errorf("ByMetric = %v", report.Summary.ByMetric)
	}
}

func TestRunClassify_Stdin(t *testing.T) {
	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{"--timezone", "utc", "-q"})
	cmd.SetIn(strings.NewReader(sampleLog))

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if !strings.Contains(buf.String(), "4 lines, 3 samples") {
		t.Errorf("unexpected quiet summary: %s", buf.String())
	}
}

func TestRunClassify_UnknownFormat(t *testing.T) {
	logPath := writeLog(t, sampleLog)

	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{"-o", "xml", logPath})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("classify succeeded with unknown format")
	}
}

func TestRunClassify_MissingFile(t *testing.T) {
	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.log")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("classify succeeded with missing file")
	}
}

func TestRunClassify_ForwardsToCollector(t *testing.T) {
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- body
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	logPath := writeLog(t, sampleLog)

	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{
		"--timezone", "utc",
		"--collector-url", server.URL,
		"--collector-trigger", "on_samples",
		logPath,
	})
	cmd.SetOut(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	select {
	case body := <-received:
		var payload struct {
			Series []json.RawMessage `json:"series"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("collector body is not valid JSON: %v", err)
		}
		if len(payload.Series) != 3 {
			t.Errorf("forwarded %d series, want 3", len(payload.Series))
		}
	default:
		t.Error("collector was not called")
	}
}

func TestRunSelfTest(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	cmd := NewSelfTestCommand()
	cmd.SetArgs([]string{"--timezone", "utc"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("selftest failed: %v", err)
	}

	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
	if !strings.Contains(buf.String(), "Self test passed") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	logPath := filepath.Join(tmpDir, "worker.log")

	if err := os.WriteFile(logPath, []byte("test log"), 0644); err != nil {
		t.Fatalf("Failed to create log file: %v", err)
	}

	configContent := `log_sources:
  - ` + logPath + `

timezone: utc

collector:
  url: http://localhost:8080/intake
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Configuration valid!") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunValidate_BadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("timezone: Mars/Olympus_Mons\n"), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("validate succeeded with bad config")
	}
}
