// Package chunker splits markdown knowledge files into heading-scoped
// passages for search indexing.
package chunker

import (
	"strings"

	"github.com/glemmtal/alpbot/internal/model"
)

// DefaultMaxChars bounds a passage that no heading boundary terminates.
const DefaultMaxChars = 1000

// Options configures chunking behavior.
type Options struct {
	MaxChars int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{MaxChars: DefaultMaxChars}
}

// Section is a contiguous stretch of text under one heading context.
type Section struct {
	Text       string
	Heading    string
	Subheading string
}

// Split scans text line by line and emits one section per heading-scoped
// stretch. A `# ` line flushes the accumulated section, sets the heading and
// clears the subheading; a `## ` line flushes and sets only the subheading.
// Accumulated body text exceeding MaxChars is flushed early under the same
// heading context. Blank sections are never emitted.
func Split(content string, opts Options) []Section {
	if opts.MaxChars <= 0 {
		opts = DefaultOptions()
	}

	var sections []Section
	heading := model.DefaultHeading
	subheading := ""
	var body strings.Builder

	flush := func() {
		text := strings.TrimSpace(body.String())
		if text != "" {
			sections = append(sections, Section{
				Text:       text,
				Heading:    heading,
				Subheading: subheading,
			})
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "## "):
			flush()
			subheading = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
		case strings.HasPrefix(trimmed, "# "):
			flush()
			heading = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			subheading = ""
		default:
			body.WriteString(line)
			body.WriteString("\n")
			if body.Len() > opts.MaxChars {
				flush()
			}
		}
	}
	flush()

	return sections
}
