package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRequestSchemaDescribesModuleForms(t *testing.T) {
	data, err := json.Marshal(buildRequestSchema())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, fragment := range []string{`"Navi Breakdown"`, `"HighestHp"`, `"selection_lhs"`, `"oneOf"`} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected request schema to contain %s", fragment)
		}
	}
}

func TestWriteSchemaCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.schema.json")
	if err := writeSchema(path, buildResultSchema()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"lhs_win"`) {
		t.Fatalf("expected outcome enum in result schema")
	}
}
