package memory

import "strings"

// SplitChunks breaks text into line-aligned chunks of at most maxChars
// characters each, for importing long documents as individual memories.
// A single line longer than maxChars becomes its own chunk rather than
// being cut mid-line.
func SplitChunks(text string, maxChars int) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var chunks []string
	var buf []string
	length := 0

	for _, line := range lines {
		if length+len(line)+1 > maxChars && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, "\n"))
			buf = nil
			length = 0
		}
		buf = append(buf, line)
		length += len(line) + 1
	}

	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, "\n"))
	}

	return chunks
}
