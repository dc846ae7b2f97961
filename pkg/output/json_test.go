package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := createTestReport(t, "Alice")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed["source"] != "chat.txt" {
		t.Errorf("source = %v, want chat.txt", parsed["source"])
	}
	if parsed["self"] != "Alice" {
		t.Errorf("self = %v, want Alice", parsed["self"])
	}

	records, ok := parsed["records"].([]interface{})
	if !ok || len(records) != 5 {
		t.Fatalf("records = %v, want 5 entries", parsed["records"])
	}

	first := records[0].(map[string]interface{})
	if first["type"] != "system" {
		t.Errorf("records[0].type = %v, want system", first["type"])
	}
	second := records[1].(map[string]interface{})
	if second["type"] != "user" || second["sender"] != "Alice" || second["outgoing"] != true {
		t.Errorf("records[1] = %v", second)
	}
	if second["content"] != "Hello &amp; welcome" {
		t.Errorf("records[1].content = %v, want escaped content", second["content"])
	}

	summary := parsed["summary"].(map[string]interface{})
	totals := summary["totals"].(map[string]interface{})
	if totals["user_messages"] != float64(4) {
		t.Errorf("user_messages = %v, want 4", totals["user_messages"])
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})
	report := createTestReport(t, "")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	// Quiet mode should only have summary fields
	if _, ok := parsed["records"]; ok {
		t.Error("Quiet mode should not include records")
	}
	if _, ok := parsed["totals"]; !ok {
		t.Error("Quiet mode should include totals")
	}
}

func TestJSONFormatter_FormatAll(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	reports := []*Report{createTestReport(t, ""), createTestReport(t, "Bob")}

	var buf bytes.Buffer
	if err := f.FormatAll(context.Background(), reports, &buf); err != nil {
		t.Fatalf("FormatAll() error = %v", err)
	}

	var parsed []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not a JSON array: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d reports, want 2", len(parsed))
	}
	if parsed[1]["self"] != "Bob" {
		t.Errorf("reports[1].self = %v, want Bob", parsed[1]["self"])
	}
}

func TestJSONFormatter_FormatAll_Empty(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.FormatAll(context.Background(), nil, &buf); err != nil {
		t.Fatalf("FormatAll() error = %v", err)
	}
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Errorf("FormatAll(nil) = %s, want []", got)
	}
}
