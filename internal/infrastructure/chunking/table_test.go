package chunking

import (
	"strings"
	"testing"
)

const summaryTable = "The following table summarizes revenue:\nQ1 2023 Q1 2024\n$ 1,200,000 $ 1,500,000\nTotal revenue $ 2,700,000"

func TestIsFinancialTableDetectsSummaryTable(t *testing.T) {
	if !IsFinancialTable(summaryTable) {
		t.Fatalf("expected summary table to be detected")
	}
}

func TestIsFinancialTableRequiresThreeLines(t *testing.T) {
	if IsFinancialTable("Total revenue $ 1,200\n$ 1,300") {
		t.Fatalf("expected two-line text to be rejected")
	}
}

func TestIsFinancialTableRejectsProse(t *testing.T) {
	text := "The company reported strong results.\nManagement expects continued growth.\nNo structural changes are planned."
	if IsFinancialTable(text) {
		t.Fatalf("expected prose to be rejected")
	}
}

func TestIsFinancialTableIsDeterministic(t *testing.T) {
	first := IsFinancialTable(summaryTable)
	for i := 0; i < 5; i++ {
		if IsFinancialTable(summaryTable) != first {
			t.Fatalf("expected identical result on repeated calls")
		}
	}
}

func TestExtractCompleteTableReturnsContiguousSpan(t *testing.T) {
	lines := []string{
		"Overview paragraph",
		"The following table summarizes costs:",
		"Cost of sales $ 1,200",
		"Total assets $ 2,400",
		"footnote one",
		"footnote two",
		"footnote three",
	}
	text := strings.Join(lines, "\n")

	got := ExtractCompleteTable(text)
	want := strings.Join(lines[0:6], "\n")
	if got != want {
		t.Fatalf("expected span %q, got %q", want, got)
	}
	if strings.Contains(got, "footnote three") {
		t.Fatalf("expected trailing line outside span to be dropped")
	}
}

func TestExtractCompleteTableFallsBackToOriginal(t *testing.T) {
	text := "plain prose without boundaries\nno numbers here\nnothing tabular at all"
	if got := ExtractCompleteTable(text); got != text {
		t.Fatalf("expected original text back, got %q", got)
	}
}
