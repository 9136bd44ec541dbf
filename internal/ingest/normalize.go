package ingest

import "strings"

// Normalize cleans extracted text before splitting: trims the ends, collapses
// runs of spaces and tabs, and caps blank-line runs at one. Paragraph breaks
// are kept because the splitter prefers them as boundaries.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	spaces := 0
	newlines := 0
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			if r == '\r' {
				continue
			}
			newlines++
			spaces = 0
		case r == ' ' || r == '\t':
			spaces++
		default:
			if newlines > 0 {
				if newlines >= 2 {
					b.WriteString("\n\n")
				} else {
					b.WriteByte('\n')
				}
				newlines = 0
			} else if spaces > 0 && b.Len() > 0 {
				b.WriteByte(' ')
			}
			spaces = 0
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
