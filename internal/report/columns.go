package report

import "strings"

// ResolveColumn maps an ordered list of acceptable header spellings to the
// header actually present in headers, tolerating the formatting drift seen
// across export revisions (dash variants, non-breaking spaces, casing).
//
// Resolution order, first match wins:
//  1. exact match
//  2. normalized match (trim, unify dashes, strip spaces, lowercase)
//  3. keyword-subset match (every candidate word longer than two characters
//     is contained in the header)
//
// When any candidate names a B2B field, headers without "b2b" are rejected
// outright: a B2B units lookup must never fall back to the plain units
// column, even though that name is a keyword-subset superset match. The
// second return value is false when nothing resolves; the caller owns the
// fallback policy (zero-filled column plus warning).
func ResolveColumn(headers []string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	wantB2B := false
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), "b2b") {
			wantB2B = true
			break
		}
	}

	for _, c := range candidates {
		for _, h := range headers {
			if c == h {
				return h, true
			}
		}
	}

	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeHeader(h)
		if _, ok := normalized[key]; !ok {
			normalized[key] = h
		}
	}
	for _, c := range candidates {
		if h, ok := normalized[normalizeHeader(c)]; ok {
			if wantB2B && !strings.Contains(strings.ToLower(h), "b2b") {
				continue
			}
			return h, true
		}
	}

	for _, c := range candidates {
		words := keywordsOf(c)
		if len(words) == 0 {
			continue
		}
		for _, h := range headers {
			hl := strings.ToLower(h)
			if wantB2B && !strings.Contains(hl, "b2b") {
				continue
			}
			if containsAll(hl, words) {
				return h, true
			}
		}
	}

	return "", false
}

// normalizeHeader collapses the header variants the exports produce for the
// same logical column: en-dash/em-dash vs. hyphen, stray or non-breaking
// spaces, case differences.
func normalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToLower(s)
}

// keywordsOf splits a candidate into its lowercase words of length > 2,
// dropping separator runs.
func keywordsOf(candidate string) []string {
	fields := strings.Fields(strings.ToLower(candidate))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		w = strings.Trim(w, "–—-")
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
