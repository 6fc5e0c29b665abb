package fingerprint

import "testing"

func TestSumDeterministic(t *testing.T) {
	a := Sum("123", "Program Analyst", "https://example.gov/apply/123")
	b := Sum("123", "Program Analyst", "https://example.gov/apply/123")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
}

func TestSumLength(t *testing.T) {
	fp := Sum("id", "title", "url")
	if len(fp) != 24 {
		t.Errorf("fingerprint length = %d, want 24", len(fp))
	}
}

func TestSumDiffersPerField(t *testing.T) {
	base := Sum("123", "Program Analyst", "https://example.gov/apply/123")

	cases := map[string]string{
		"id":    Sum("124", "Program Analyst", "https://example.gov/apply/123"),
		"title": Sum("123", "Management Analyst", "https://example.gov/apply/123"),
		"url":   Sum("123", "Program Analyst", "https://example.gov/apply/124"),
	}
	for field, fp := range cases {
		if fp == base {
			t.Errorf("changing %s did not change the fingerprint", field)
		}
	}
}

func TestSumFieldShiftNotAmbiguous(t *testing.T) {
	// The separator keeps ("ab","c") and ("a","bc") apart.
	if Sum("ab", "c", "u") == Sum("a", "bc", "u") {
		t.Error("field boundary shift produced identical fingerprints")
	}
}
