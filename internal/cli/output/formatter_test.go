package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func sampleEmployees() []domain.Employee {
	return []domain.Employee{
		{EmployeeID: ptr(1), FirstName: ptr("A"), LastName: ptr("B"), Email: ptr("AB"), Salary: ptr(1234.5)},
		{EmployeeID: ptr(2), FirstName: ptr("C")},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"WIDE", FormatWide, false},
		{" json ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format   Format
		wide     bool
		wantType string
		wantWide bool
	}{
		{FormatJSON, false, "json", false},
		{FormatYAML, false, "yaml", false},
		{FormatTable, false, "table", false},
		{FormatTable, true, "table", true},
		{FormatWide, false, "table", true},
	}
	for _, tt := range tests {
		f := NewFormatter(tt.format, tt.wide)
		switch v := f.(type) {
		case *JSONFormatter:
			if tt.wantType != "json" {
				t.Errorf("%s: got JSONFormatter", tt.format)
			}
		case *YAMLFormatter:
			if tt.wantType != "yaml" {
				t.Errorf("%s: got YAMLFormatter", tt.format)
			}
		case *TableFormatter:
			if tt.wantType != "table" || v.Wide != tt.wantWide {
				t.Errorf("%s: got TableFormatter{Wide:%v}", tt.format, v.Wide)
			}
		}
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sampleEmployees()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var back []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if back[0]["employeeId"] != float64(1) || back[0]["firstName"] != "A" {
		t.Errorf("first = %v", back[0])
	}
	if _, ok := back[1]["email"]; ok {
		t.Error("absent optional field should be omitted")
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, sampleEmployees()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "{") || strings.Contains(out, "[") {
		t.Errorf("expected block style YAML:\n%s", out)
	}
	if !strings.Contains(out, "employeeId: 1") || !strings.Contains(out, "firstName: A") {
		t.Errorf("json field names not used:\n%s", out)
	}
	if strings.Index(out, "employeeId") > strings.Index(out, "firstName") {
		t.Errorf("key order not preserved:\n%s", out)
	}

	var back []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(back) != 2 {
		t.Errorf("len = %d", len(back))
	}
}
