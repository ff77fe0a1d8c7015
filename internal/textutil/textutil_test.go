package textutil

import (
	"math"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		`  AC/DC: Live?  `: "ACDC Live",
		`Title...`:         "Title",
		`a<b>c|d*e"f`:      "abcdef",
		`   `:              "",
		"Tab\tName":        "TabName",
	}
	for input, want := range cases {
		if got := SanitizeName(input); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeOrFallsBack(t *testing.T) {
	if got := SanitizeOr("???", "Unknown Artist"); got != "Unknown Artist" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := SanitizeOr("Muse", "Unknown Artist"); got != "Muse" {
		t.Fatalf("expected sanitized value, got %q", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  Show   Name \t 2020 "); got != "Show Name 2020" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTokenizeKeepsShortWordsAndUnicode(t *testing.T) {
	got := Tokenize("Up (2009) Amélie")
	want := []string{"up", "2009", "amélie"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	if CosineSimilarity(nil, NewFingerprint("x")) != 0 {
		t.Fatal("expected 0 for nil fingerprint")
	}
	same := CosineSimilarity(NewFingerprint("The Office"), NewFingerprint("the office"))
	if math.Abs(same-1) > 1e-9 {
		t.Fatalf("expected identical titles to score 1, got %f", same)
	}
	if CosineSimilarity(NewFingerprint("Alpha"), NewFingerprint("Beta")) != 0 {
		t.Fatal("expected disjoint titles to score 0")
	}
}

func TestBestMatch(t *testing.T) {
	idx, score := BestMatch("the office us", []string{"Office Space", "The Office", "The Office (US)"})
	if idx != 2 || score <= 0 {
		t.Fatalf("expected third candidate, got %d (%f)", idx, score)
	}
	if idx, _ := BestMatch("zzz", []string{"first", "second"}); idx != 0 {
		t.Fatalf("expected first candidate when nothing overlaps, got %d", idx)
	}
	if idx, _ := BestMatch("x", nil); idx != -1 {
		t.Fatalf("expected -1 for no candidates, got %d", idx)
	}
}
