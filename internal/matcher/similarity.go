package matcher

import "strings"

// Similarity scores two person names in [0,1]. It blends whole-word
// overlap with character bigram overlap (Dice), so both reordered names
// ("DOE JOHN" vs "John Doe") and OCR-mangled spellings score usefully.
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	word := wordOverlap(na, nb)
	gram := bigramDice(na, nb)

	// Word matches are the stronger signal for names; bigrams rescue
	// near-misses the word comparison cannot see.
	return 0.6*word + 0.4*gram
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ',' || r == '.':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func wordOverlap(a, b string) float64 {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(wa))
	for _, w := range wa {
		set[w] = true
	}
	matches := 0
	for _, w := range wb {
		if set[w] {
			matches++
			delete(set, w)
		}
	}

	longer := len(wa)
	if len(wb) > longer {
		longer = len(wb)
	}
	return float64(matches) / float64(longer)
}

func bigramDice(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	common := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(ba)+len(bb))
}

func bigrams(s string) []string {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) < 2 {
		return nil
	}
	out := make([]string, 0, len(s)-1)
	for i := 0; i+2 <= len(s); i++ {
		out = append(out, s[i:i+2])
	}
	return out
}
