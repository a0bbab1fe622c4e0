package matcher

import "strings"

// NormalizeInvoiceNumber canonicalizes a document number for fuzzy comparison:
// lower-cased with every non-alphanumeric rune removed, so "INV-001",
// "INV 001" and "inv001" all collapse to "inv001".
//
// The function is total (empty input yields the empty string) and idempotent.
// Only Passes 3-5 compare normalized numbers; Passes 1-2 compare raw trimmed
// values.
func NormalizeInvoiceNumber(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
