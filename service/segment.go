package service

import (
	"strings"

	"arccs-backend/models"
)

// SyntheticTitle is the placeholder title used when a plain-text document is
// wrapped as a single section instead of being split on headers.
const SyntheticTitle = "## Document Content"

// SplitSections splits markdown-like text into flat sections on ATX-style
// header lines. Every header line, whatever its depth, starts a new section:
// the header line (trimmed) becomes the title and everything up to the next
// header becomes the content. Text before the first header is discarded.
// A document with no headers yields no sections.
func SplitSections(text string) []models.Section {
	var sections []models.Section
	var title string
	var content []string
	inSection := false

	flush := func() {
		sections = append(sections, models.Section{
			Title:   title,
			Content: strings.TrimSpace(strings.Join(content, "\n")),
		})
	}

	for _, line := range strings.Split(text, "\n") {
		if isHeaderLine(line) {
			if inSection {
				flush()
			}
			title = strings.TrimSpace(line)
			content = nil
			inSection = true
			continue
		}
		if inSection {
			content = append(content, line)
		}
	}

	if inSection {
		flush()
	}

	return sections
}

// SyntheticSection wraps raw text as one section with a placeholder title,
// for callers whose input has no headers at all.
func SyntheticSection(text string) models.Section {
	return models.Section{
		Title:   SyntheticTitle,
		Content: strings.TrimSpace(text),
	}
}

// isHeaderLine reports whether a line is an ATX header: one or more '#'
// characters followed by whitespace.
func isHeaderLine(line string) bool {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	return i > 0 && i < len(line) && (line[i] == ' ' || line[i] == '\t')
}
