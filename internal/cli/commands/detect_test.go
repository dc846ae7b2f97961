package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/detector"
)

const regionalExport = `01/12/2020 14:30 - Alice: Hello
13/12/2020 14:31 - Bob: Hi
`

func detect(t *testing.T, text string) *detector.DetectionResult {
	t.Helper()
	return detector.New().DetectFromLines(strings.Split(text, "\n"))
}

func TestOutputDetectText_NoMatch(t *testing.T) {
	var buf bytes.Buffer
	if err := outputDetectText(&buf, detect(t, "hello\nworld\n"), "/test/chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "No export header family detected") {
		t.Errorf("Expected no-match message, got:\n%s", buf.String())
	}
}

func TestOutputDetectText_WithMatch(t *testing.T) {
	var buf bytes.Buffer
	if err := outputDetectText(&buf, detect(t, sampleExport), "/test/chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"File: /test/chat.txt",
		"Detected family: modern",
		"Confidence: 100.0% (3/3 message lines)",
		"System notices:  1",
		"Date order: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOutputDetectText_Shadowed(t *testing.T) {
	var buf bytes.Buffer
	if err := outputDetectText(&buf, detect(t, regionalExport), "/test/chat.txt", &DetectOptions{ShowAll: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Detected family: legacy") {
		t.Errorf("regional lines should be read by the legacy family:\n%s", out)
	}
	if !strings.Contains(out, "WARNING: regional pattern matched") {
		t.Errorf("Expected shadowing warning:\n%s", out)
	}
	if !strings.Contains(out, "shadowed by: legacy") {
		t.Errorf("Expected alternatives section:\n%s", out)
	}
}

func TestOutputDetectJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := outputDetectJSON(&buf, detect(t, regionalExport), "/test/chat.txt", &DetectOptions{ShowAll: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.File != "/test/chat.txt" {
		t.Errorf("File = %q", out.File)
	}
	if out.DateOrder != string(detector.DateOrderDayFirst) {
		t.Errorf("DateOrder = %q", out.DateOrder)
	}
	if len(out.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(out.Matches))
	}
	if out.Matches[0].Family != "legacy" || out.Matches[0].WonCount != 2 {
		t.Errorf("best match = %+v", out.Matches[0])
	}
	if !out.Matches[1].Shadowed || out.Matches[1].ClaimedBy != "legacy" {
		t.Errorf("regional match = %+v", out.Matches[1])
	}
}

func TestOutputDetectJSON_BestOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := outputDetectJSON(&buf, detect(t, regionalExport), "/test/chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), `"regional"`) {
		t.Error("only the best match should be listed without --all")
	}
}

func TestRunDetect_MissingFile(t *testing.T) {
	cmd := NewDetectCommand(testGlobals(t))
	cmd.SetArgs([]string{"/nonexistent/chat.txt"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunDetect_InvalidOutput(t *testing.T) {
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)

	cmd := NewDetectCommand(testGlobals(t))
	cmd.SetArgs([]string{"-o", "yaml", export})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for unknown output format")
	}
}

func TestRunDetect_JSONOutput(t *testing.T) {
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)

	cmd := NewDetectCommand(testGlobals(t))
	cmd.SetArgs([]string{"-o", "json", export})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Detect with JSON output failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"family": "modern"`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunDetect_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	export := writeExport(t, dir, "chat.txt", sampleExport)
	configPath := filepath.Join(dir, "wareader.yaml")

	cmd := NewDetectCommand(testGlobals(t))
	cmd.SetArgs([]string{"--write-config", configPath, export})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Detect with write-config failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrote starter config to: "+configPath) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
	for _, want := range []string{"# Detected family: modern", "#   - Alice", "#   - Bob", `# self: "Alice"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}

	// The generated file must load as-is.
	if _, err := config.Load(context.Background(), configPath); err != nil {
		t.Errorf("generated config does not load: %v", err)
	}
}

func TestWriteStarterConfig_NoOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "existing.yaml")
	if err := os.WriteFile(configPath, []byte("existing content"), 0644); err != nil {
		t.Fatal(err)
	}

	err := writeStarterConfig(&bytes.Buffer{}, detect(t, sampleExport), nil, "chat.txt", configPath)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got %v", err)
	}

	data, _ := os.ReadFile(configPath)
	if string(data) != "existing content" {
		t.Error("Existing file was modified")
	}
}

func TestWriteStarterConfig_NoMatch(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "new.yaml")

	err := writeStarterConfig(&bytes.Buffer{}, detect(t, "nothing here"), nil, "chat.txt", configPath)
	if err == nil || !strings.Contains(err.Error(), "no export header family") {
		t.Errorf("Expected no-family error, got %v", err)
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Config file should not be created without a match")
	}
}

func TestDetectOptions_Defaults(t *testing.T) {
	cmd := NewDetectCommand(&GlobalOptions{})

	if got := cmd.Flags().Lookup("sample").DefValue; got != "200" {
		t.Errorf("sample default = %s, want 200", got)
	}
	if got := cmd.Flags().Lookup("output").DefValue; got != "text" {
		t.Errorf("output default = %s, want text", got)
	}
	if cmd.Flags().ShorthandLookup("w") == nil {
		t.Error("Missing -w shorthand for --write-config")
	}
}
