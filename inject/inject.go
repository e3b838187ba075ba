// Package inject renders retrieved memories into a single size-bounded
// text block suitable for pasting into an LLM prompt.
package inject

import (
	"fmt"
	"strings"

	"github.com/w-h-a/brainx/memory/providers/store"
)

const (
	// Separator joins rendered items.
	Separator = "\n\n---\n\n"

	marker = "…"
)

type Option func(*Options)

type Options struct {
	MaxCharsPerItem int
	MaxLinesPerItem int
}

func WithMaxCharsPerItem(n int) Option {
	return func(o *Options) {
		o.MaxCharsPerItem = n
	}
}

func WithMaxLinesPerItem(n int) Option {
	return func(o *Options) {
		o.MaxLinesPerItem = n
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxCharsPerItem: 2000,
		MaxLinesPerItem: 80,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Format renders each result as a one-line metadata header followed by
// its truncated content. Line truncation runs before character
// truncation: cutting whole lines preserves structure that a character
// cut would slice mid-line.
func Format(results []store.ScoredRecord, opts ...Option) string {
	options := NewOptions(opts...)

	items := make([]string, 0, len(results))

	for _, rec := range results {
		meta := fmt.Sprintf(
			"[sim:%.2f imp:%d tier:%s type:%s agent:%s ctx:%s]",
			rec.Similarity, rec.Importance, rec.Tier, rec.Type, rec.Agent, rec.Context,
		)

		content := strings.TrimSpace(rec.Content)
		content = truncateByLines(content, options.MaxLinesPerItem)
		content = truncateByChars(content, options.MaxCharsPerItem)

		items = append(items, meta+"\n"+content)
	}

	return strings.Join(items, Separator)
}

func truncateByLines(text string, maxLines int) string {
	if maxLines <= 0 {
		return text
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) <= maxLines {
		return text
	}

	return strings.Join(lines[:maxLines], "\n") + "\n" + marker
}

func truncateByChars(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	return string(runes[:maxChars-1]) + marker
}
