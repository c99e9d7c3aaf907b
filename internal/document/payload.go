// Package document turns a raw upload into a model-ready payload:
// one canonical PNG page per document page, all in memory and
// request-scoped.
package document

// Page is a single PNG-encoded page image.
type Page struct {
	PNG []byte
}

// Payload is the normalized, model-ready representation of an upload.
type Payload struct {
	Pages    []Page
	Filename string
	Format   string // detected format, e.g. "pdf", "jpg", "heic"
	Size     int64  // original upload size in bytes
}

// PageCount returns the number of page images in the payload.
func (p *Payload) PageCount() int { return len(p.Pages) }
