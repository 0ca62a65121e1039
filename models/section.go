package models

// Section is one titled slice of a source document, produced by splitting
// the document text on markdown-style headers. Title keeps the header line
// verbatim, marker characters included.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
