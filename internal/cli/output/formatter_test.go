package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format should give a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml format should give a YAMLFormatter")
	}
	if _, ok := NewFormatter("").(*TableFormatter); !ok {
		t.Error("empty format should give a TableFormatter")
	}
}

type sample struct {
	Name    string   `json:"name" yaml:"name"`
	Count   int      `json:"count" yaml:"count"`
	Tags    []string `json:"tags" yaml:"tags"`
	Skipped string   `json:"-" yaml:"-"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"name": "a"`) || !strings.Contains(out, `"count": 2`) {
		t.Errorf("unexpected json:\n%s", out)
	}
	if strings.Contains(out, "Skipped") {
		t.Errorf("json output should omit '-' fields:\n%s", out)
	}
	buf.Reset()
	if err := (&JSONFormatter{}).Format(&buf, sample{Name: "<p>"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"name": "<p>"`) {
		t.Errorf("html should not be escaped: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := sample{Name: "a", Count: 2, Tags: []string{"web", "api"}}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "name: a\ncount: 2\ntags:\n  - web\n  - api\n"
	if buf.String() != want {
		t.Errorf("yaml = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	data := &sample{Name: "a", Count: 2, Tags: []string{"x", "y"}}
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "FIELD") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[3], "x, y") {
		t.Errorf("tags row = %q", lines[3])
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	var buf bytes.Buffer
	data := []sample{{Name: "a", Count: 1}, {Name: "", Count: 2}}
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if strings.Fields(lines[0])[0] != "NAME" {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Fields(lines[2])[0] != "-" {
		t.Errorf("empty string should render as '-': %q", lines[2])
	}
}

func TestTableFormatter_Scalars(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, []string{"/", "/version"}); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != "/\n/version\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, map[string]int{"b": 2, "a": 1}); err != nil {
		t.Fatalf("Format: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "a") {
		t.Errorf("map rows not sorted:\n%s", buf.String())
	}
}

func TestTableFormatter_String(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, "hello"); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatValue_Time(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data := struct {
		At   time.Time `json:"at"`
		Zero time.Time `json:"zero"`
	}{At: ts}
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, data); err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2024-01-02T03:04:05Z") {
		t.Errorf("time not formatted:\n%s", out)
	}
	if !strings.Contains(out, "zero  -") {
		t.Errorf("zero time should render as '-':\n%s", out)
	}
}

func TestTable_AddRow(t *testing.T) {
	tb := &Table{Headers: []string{"A", "B"}}
	tb.AddRow("1", "2")
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, tb); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if buf.String() != "A  B\n1  2\n" {
		t.Errorf("output = %q", buf.String())
	}
}
