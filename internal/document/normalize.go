package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WEBP decoder

	"finvoapi/internal/config"
	"finvoapi/internal/model"
)

// supportedExtensions is the upload allowlist. Values are the detected
// format names reported in file_info.
var supportedExtensions = map[string]string{
	".pdf":  "pdf",
	".jpg":  "jpg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".bmp":  "bmp",
	".webp": "webp",
	".tiff": "tiff",
	".tif":  "tiff",
	".heic": "heic",
	".heif": "heif",
}

// SupportedFormats returns the accepted file extensions, sorted by the
// order clients usually care about.
func SupportedFormats() []string {
	return []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".tif", ".heic", ".heif"}
}

// Normalizer validates an upload and converts it to a Payload.
type Normalizer struct {
	maxBytes int64
	maxPages int
	dpi      float64
}

// NewNormalizer builds a Normalizer from the process configuration.
func NewNormalizer(cfg *config.AppConfig) *Normalizer {
	return &Normalizer{
		maxBytes: cfg.MaxFileSizeBytes(),
		maxPages: cfg.Limits.MaxPDFPages,
		dpi:      float64(cfg.Limits.PDFRenderDPI),
	}
}

// Normalize validates raw upload bytes against the size and format gates
// and produces a payload of PNG page images. All failures are typed; no
// network or disk I/O is involved.
func (n *Normalizer) Normalize(raw []byte, filename string) (*Payload, error) {
	if int64(len(raw)) > n.maxBytes {
		return nil, model.NewError(model.KindFileTooLarge,
			fmt.Sprintf("file is %.2fMB, limit is %dMB", float64(len(raw))/(1024*1024), n.maxBytes/(1024*1024)))
	}
	if len(raw) == 0 {
		return nil, model.NewError(model.KindUnsupportedFormat, "empty file")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := supportedExtensions[ext]
	if !ok {
		// Extension lies or is missing; the content may still be HEIC
		// (common for phone uploads with stripped names).
		if isHEIC(raw) {
			format = "heic"
		} else {
			return nil, model.NewError(model.KindUnsupportedFormat,
				fmt.Sprintf("unsupported file format %q, supported: %s", ext, strings.Join(SupportedFormats(), ", ")))
		}
	}

	payload := &Payload{Filename: filename, Format: format, Size: int64(len(raw))}

	if format == "pdf" {
		pages, err := n.rasterizePDF(raw)
		if err != nil {
			return nil, err
		}
		payload.Pages = pages
		return payload, nil
	}

	pngData, err := toPNG(raw, format)
	if err != nil {
		return nil, model.WrapError(model.KindUnsupportedFormat, "decoding image", err)
	}
	payload.Pages = []Page{{PNG: pngData}}
	return payload, nil
}

// rasterizePDF renders every page of a PDF to PNG at the configured DPI.
// Page count is capped up front so oversized documents fail before any
// rendering work is done.
func (n *Normalizer) rasterizePDF(raw []byte) ([]Page, error) {
	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		return nil, model.WrapError(model.KindUnsupportedFormat, "opening PDF", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if count == 0 {
		return nil, model.NewError(model.KindUnsupportedFormat, "PDF has no pages")
	}
	if count > n.maxPages {
		return nil, model.NewError(model.KindTooManyPages,
			fmt.Sprintf("PDF has %d pages, limit is %d", count, n.maxPages))
	}

	pages := make([]Page, 0, count)
	for i := 0; i < count; i++ {
		img, err := doc.ImageDPI(i, n.dpi)
		if err != nil {
			return nil, model.WrapError(model.KindUnsupportedFormat,
				fmt.Sprintf("rendering PDF page %d", i+1), err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, model.WrapError(model.KindInternal, "encoding PNG", err)
		}
		pages = append(pages, Page{PNG: buf.Bytes()})
	}
	return pages, nil
}

// toPNG re-encodes any supported image format to canonical PNG.
func toPNG(raw []byte, format string) ([]byte, error) {
	var img image.Image
	var err error

	if format == "heic" || format == "heif" || isHEIC(raw) {
		img, err = heic.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC sniffs the ftyp box brands HEIC containers start with.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
