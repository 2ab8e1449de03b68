// Package analyze wraps the managed analysis services behind small typed
// runners: vision labeling, video annotation, speech transcription, and
// generative topic extraction.
package analyze

import "strings"

// Dedupe returns the values with duplicates removed, preserving first-seen
// order. Comparison ignores surrounding whitespace; blank values are dropped.
// Raw annotations routinely repeat a label across segments, and the record
// contract requires tag lists without duplicates.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
