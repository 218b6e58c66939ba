package report

import (
	"strings"
	"testing"
)

func TestToCSV(t *testing.T) {
	rows := []Row{
		{{"date", "2024-01-15"}, {"product", "Latte, Iced"}, {"revenue", "45.50"}},
		{{"date", "2024-01-16"}, {"product", "Espresso"}, {"revenue", "12.00"}},
	}

	got := ToCSV(rows)

	want := "date,product,revenue\n" +
		"2024-01-15,\"Latte, Iced\",45.50\n" +
		"2024-01-16,Espresso,12.00"
	if got != want {
		t.Fatalf("ToCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestToCSVEmpty(t *testing.T) {
	if got := ToCSV(nil); got != "" {
		t.Fatalf("ToCSV(nil) = %q, want empty", got)
	}
	if got := ToCSV([]Row{}); got != "" {
		t.Fatalf("ToCSV(empty) = %q, want empty", got)
	}
}

func TestToCSVHeaderFollowsFirstRow(t *testing.T) {
	rows := []Row{
		{{"b", "1"}, {"a", "2"}},
		{{"a", "4"}, {"b", "3"}},
	}

	got := ToCSV(rows)

	// Заголовок повторяет порядок колонок первой строки; значения
	// остальных строк подбираются по имени колонки.
	want := "b,a\n1,2\n3,4"
	if got != want {
		t.Fatalf("ToCSV() = %q, want %q", got, want)
	}
}

func TestToCSVMissingValues(t *testing.T) {
	rows := []Row{
		{{"name", "A"}, {"total", "10"}},
		{{"name", "B"}},
	}

	got := ToCSV(rows)

	want := "name,total\nA,10\nB,"
	if got != want {
		t.Fatalf("ToCSV() = %q, want %q", got, want)
	}
}

func TestToCSVNoTrailingNewline(t *testing.T) {
	rows := []Row{{{"x", "1"}}}
	if got := ToCSV(rows); strings.HasSuffix(got, "\n") {
		t.Fatalf("ToCSV() = %q, must not end with newline", got)
	}
}

func TestExportFormats(t *testing.T) {
	rows := []Row{{{"name", "A"}, {"total", "1"}}}

	csv, err := Export(rows, "csv")
	if err != nil {
		t.Fatalf("Export(csv) error: %v", err)
	}
	if csv != "name,total\nA,1" {
		t.Fatalf("Export(csv) = %q", csv)
	}

	jsonOut, err := Export(rows, "json")
	if err != nil {
		t.Fatalf("Export(json) error: %v", err)
	}
	text, ok := jsonOut.(string)
	if !ok {
		t.Fatalf("Export(json) returned %T, want string", jsonOut)
	}
	if !strings.Contains(text, `"name": "A"`) {
		t.Fatalf("Export(json) = %s", text)
	}
	// Порядок ключей повторяет порядок колонок.
	if strings.Index(text, `"name"`) > strings.Index(text, `"total"`) {
		t.Fatalf("Export(json) key order broken: %s", text)
	}

	passthrough, err := Export(rows, "pdf")
	if err != nil {
		t.Fatalf("Export(pdf) error: %v", err)
	}
	got, ok := passthrough.([]Row)
	if !ok || len(got) != 1 {
		t.Fatalf("Export(pdf) = %#v, want original rows", passthrough)
	}
}
