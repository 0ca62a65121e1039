package service

import (
	"strings"
	"testing"
)

func TestSplitSections(t *testing.T) {
	text := "preamble that should vanish\n" +
		"## Article 5\n" +
		"Principles relating to processing of personal data.\n" +
		"Lawfulness, fairness and transparency.\n" +
		"### Article 5(1)(a)\n" +
		"Processed lawfully, fairly and in a transparent manner.\n" +
		"## Article 6\n" +
		"Processing shall be lawful only if consent was given.\n"

	sections := SplitSections(text)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	if sections[0].Title != "## Article 5" {
		t.Errorf("title = %q, want %q", sections[0].Title, "## Article 5")
	}
	if !strings.Contains(sections[0].Content, "Lawfulness, fairness") {
		t.Errorf("section 0 content missing expected text: %q", sections[0].Content)
	}
	if strings.Contains(sections[0].Content, "Article 5(1)(a)") {
		t.Errorf("section 0 content bleeds into next section: %q", sections[0].Content)
	}

	// No nesting: the ### header starts its own flat section.
	if sections[1].Title != "### Article 5(1)(a)" {
		t.Errorf("title = %q, want the ### header", sections[1].Title)
	}

	for _, s := range sections {
		if strings.Contains(s.Content, "preamble") {
			t.Errorf("preamble before first header must be discarded, found in %q", s.Title)
		}
	}
}

func TestSplitSectionsReconstruction(t *testing.T) {
	text := "## One\nalpha\nbeta\n## Two\ngamma\n"

	sections := SplitSections(text)

	var rebuilt strings.Builder
	for _, s := range sections {
		rebuilt.WriteString(s.Title)
		rebuilt.WriteString("\n")
		rebuilt.WriteString(s.Content)
		rebuilt.WriteString("\n")
	}

	want := "## One\nalpha\nbeta\n## Two\ngamma\n"
	if rebuilt.String() != want {
		t.Errorf("reconstruction mismatch:\ngot  %q\nwant %q", rebuilt.String(), want)
	}
}

func TestSplitSectionsNoHeaders(t *testing.T) {
	sections := SplitSections("just body text\nwith no headers at all\n")
	if len(sections) != 0 {
		t.Fatalf("expected 0 sections for header-less input, got %d", len(sections))
	}
}

func TestSplitSectionsEmptyInput(t *testing.T) {
	if got := SplitSections(""); len(got) != 0 {
		t.Fatalf("expected 0 sections for empty input, got %d", len(got))
	}
}

func TestSplitSectionsHeaderRequiresWhitespace(t *testing.T) {
	// "#hashtag" is not an ATX header; "# Title" is.
	sections := SplitSections("#hashtag not a header\n# Title\nbody\n")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "# Title" {
		t.Errorf("title = %q, want %q", sections[0].Title, "# Title")
	}
}

func TestSyntheticSection(t *testing.T) {
	s := SyntheticSection("  raw proposal text  ")
	if s.Title != SyntheticTitle {
		t.Errorf("title = %q, want %q", s.Title, SyntheticTitle)
	}
	if s.Content != "raw proposal text" {
		t.Errorf("content = %q, want trimmed text", s.Content)
	}
}
