package table

import (
	"bytes"
	"testing"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"ID", "NAME", "ENTRIES"},
		{"1", "Stack 1", "1"},
		{"12", "Work", "30"},
	}
	got := Format(rows, []Alignment{AlignRight, AlignLeft, AlignRight})
	want := []string{
		"ID  NAME     ENTRIES",
		" 1  Stack 1        1",
		"12  Work          30",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatMeasuresDisplayWidth(t *testing.T) {
	rows := [][]string{
		{"日本", "x"},
		{"ab", "y"},
	}
	got := Format(rows, nil)
	if got[1] != "ab    y" {
		t.Fatalf("expected wide runes counted as two cells, got %q", got[1])
	}
}

func TestFormatEmpty(t *testing.T) {
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}

func TestWriteIncludesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []string{"ID", "NAME"}, [][]string{{"1", "a"}}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "ID  NAME\n1   a\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
