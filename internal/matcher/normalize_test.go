package matcher

import "testing"

func TestNormalizeInvoiceNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"hyphenated", "INV-001", "inv001"},
		{"spaced", "INV 001", "inv001"},
		{"already normalized", "inv001", "inv001"},
		{"mixed case", "Inv-2024/001", "inv2024001"},
		{"leading and trailing whitespace", "  INV-001  ", "inv001"},
		{"punctuation only", "---///", ""},
		{"empty", "", ""},
		{"digits only", "20240042", "20240042"},
		{"underscores and dots", "INV_2024.042", "inv2024042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeInvoiceNumber(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeInvoiceNumber(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeInvoiceNumberEquivalence(t *testing.T) {
	// Common vendor formatting variants must collapse to one canonical form.
	variants := []string{"INV-001", "INV 001", "inv001", "Inv.001", "INV--001"}

	canonical := NormalizeInvoiceNumber(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeInvoiceNumber(v); got != canonical {
			t.Errorf("expected %q to normalize to %q, got %q", v, canonical, got)
		}
	}
}

func TestNormalizeInvoiceNumberIdempotent(t *testing.T) {
	inputs := []string{"INV-001", "abc123", "", "  A B C  "}

	for _, input := range inputs {
		once := NormalizeInvoiceNumber(input)
		twice := NormalizeInvoiceNumber(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
