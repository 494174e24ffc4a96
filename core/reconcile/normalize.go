package reconcile

import "strings"

// idSeparators are removed from identifiers before comparison.
var idSeparators = strings.NewReplacer("-", "", " ", "")

// NormalizeID removes hyphens and spaces from raw and, when width is numeric,
// left-pads the result with zeros up to width. Longer identifiers are never truncated.
func NormalizeID(raw string, width IDWidth) string {
	id := idSeparators.Replace(raw)
	if width.Mixed() || len(id) >= int(width) {
		return id
	}
	return strings.Repeat("0", int(width)-len(id)) + id
}
