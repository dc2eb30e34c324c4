package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTableFormatter_Table(t *testing.T) {
	table := &Table{}
	table.SetHeaders("NAME", "VALUE")
	table.AddRow("key1", "value1")

	tests := []struct {
		name        string
		f           *TableFormatter
		data        any
		wantHeaders bool
	}{
		{"pointer", &TableFormatter{}, table, true},
		{"value", &TableFormatter{}, *table, true},
		{"no headers", &TableFormatter{NoHeaders: true}, table, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.f.Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			out := buf.String()
			if strings.Contains(out, "NAME") != tt.wantHeaders {
				t.Errorf("headers present = %v, want %v", !tt.wantHeaders, tt.wantHeaders)
			}
			if !strings.Contains(out, "value1") {
				t.Error("row missing")
			}
		})
	}
}

func TestTableFormatter_Employees(t *testing.T) {
	var narrow, wide bytes.Buffer
	if err := (&TableFormatter{}).Format(&narrow, sampleEmployees()); err != nil {
		t.Fatal(err)
	}
	if err := (&TableFormatter{Wide: true}).Format(&wide, sampleEmployees()); err != nil {
		t.Fatal(err)
	}

	header := strings.SplitN(narrow.String(), "\n", 2)[0]
	for _, col := range []string{"EMPLOYEE_ID", "FIRST_NAME", "LAST_NAME", "JOB_ID", "DEPARTMENT_ID"} {
		if !strings.Contains(header, col) {
			t.Errorf("header %q missing %s", header, col)
		}
	}
	if strings.Contains(header, "EMAIL") {
		t.Error("wide column EMAIL shown in narrow mode")
	}

	wideHeader := strings.SplitN(wide.String(), "\n", 2)[0]
	if !strings.Contains(wideHeader, "EMAIL") || !strings.Contains(wideHeader, "SALARY") {
		t.Errorf("wide header %q missing columns", wideHeader)
	}
	if !strings.Contains(wide.String(), "1234.5") {
		t.Errorf("salary not rendered:\n%s", wide.String())
	}

	// Absent fields render as "-".
	lines := strings.Split(strings.TrimSpace(narrow.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[2], "-") {
		t.Errorf("unexpected rows:\n%s", narrow.String())
	}
}

func TestTableFormatter_EmptyAndNil(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("nil: %q, %v", buf.String(), err)
	}
	if err := f.Format(&buf, []struct{ A string }{}); err != nil || buf.Len() != 0 {
		t.Errorf("empty slice: %q, %v", buf.String(), err)
	}
}

func TestTableFormatter_MapAndStruct(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}

	if err := f.Format(&buf, map[string]string{"server": "http://x"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "KEY") || !strings.Contains(buf.String(), "http://x") {
		t.Errorf("map output:\n%s", buf.String())
	}

	buf.Reset()
	type status struct {
		State   string `json:"state"`
		Secret  string `table:"-"`
		private string
	}
	if err := f.Format(&buf, status{State: "authenticated", Secret: "x", private: "y"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "state") || !strings.Contains(out, "authenticated") {
		t.Errorf("struct output:\n%s", out)
	}
	if strings.Contains(out, "Secret") || strings.Contains(out, "private") {
		t.Errorf("hidden fields shown:\n%s", out)
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, "plain"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `"plain"` {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	var nilPtr *int
	var nilIface any
	ts := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"string", "x", "x"},
		{"empty string", "", "-"},
		{"int", 42, "42"},
		{"uint", uint(7), "7"},
		{"float", 0.4, "0.4"},
		{"bool", true, "true"},
		{"nil pointer", nilPtr, "-"},
		{"pointer", ptr(5), "5"},
		{"time", ts, "2024-01-02 03:04"},
		{"zero time", time.Time{}, "-"},
		{"slice", []int{1, 2}, "[2 items]"},
		{"empty map", map[string]int{}, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tt.v)); got != tt.want {
				t.Errorf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := formatValue(reflect.ValueOf(nilIface)); got != "" {
		t.Errorf("invalid value = %q", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"employeeId":    "employee_Id",
		"commissionPct": "commission_Pct",
		"name":          "name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
