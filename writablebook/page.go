package writablebook

// Page is one page of a book. It is a value: copies never share state.
type Page struct {
	text       string
	annotation string
}

// NewPage creates a Page with the given text and an empty annotation.
func NewPage(text string) Page {
	return Page{text: text}
}

// NewPageWithAnnotation creates a Page with the given text and annotation.
func NewPageWithAnnotation(text, annotation string) Page {
	return Page{text: text, annotation: annotation}
}

// Text returns the text of the page.
func (p Page) Text() string {
	return p.text
}

// Annotation returns the legacy photo name of the page, persisted as "photoname".
func (p Page) Annotation() string {
	return p.annotation
}
