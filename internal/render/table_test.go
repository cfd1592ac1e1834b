package render

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	out := Table(
		[]string{"Purpose", "Calls"},
		[][]string{{"quiz-batch", "3"}, {"quiz-regenerate", "1"}, {"TOTAL", "4"}},
		true,
	)

	for _, want := range []string{"Purpose", "Calls", "quiz-batch", "quiz-regenerate", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "quiz-batch") > strings.Index(out, "TOTAL") {
		t.Error("rows should keep their order")
	}
	if !strings.Contains(out, "╭") {
		t.Error("expected a rounded border")
	}
}

func TestTable_NoRows(t *testing.T) {
	out := Table([]string{"ID"}, nil, false)
	if !strings.Contains(out, "ID") {
		t.Errorf("header missing:\n%s", out)
	}
}
