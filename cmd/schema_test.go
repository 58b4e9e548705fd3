package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunSchemaJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RunSchema("json", &buf); err != nil {
		t.Fatalf("RunSchema failed: %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(buf.Bytes(), &schema); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
	if schema["title"] != "Manifest" {
		t.Errorf("unexpected schema title: %v", schema["title"])
	}
}

func TestRunSchemaYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := RunSchema("yaml", &buf); err != nil {
		t.Fatalf("RunSchema failed: %v", err)
	}
	if !strings.Contains(buf.String(), "title: Manifest") {
		t.Errorf("unexpected yaml output:\n%s", buf.String())
	}
}

func TestRunSchemaUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := RunSchema("toml", &buf); err == nil {
		t.Error("expected error for unsupported format")
	}
}
