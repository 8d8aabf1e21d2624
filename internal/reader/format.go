package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// FormatFor returns the registered format for filename's extension, or nil.
func FormatFor(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// ExtractText extracts text from a file, using a registered format or plain text fallback.
func ExtractText(filename string) (string, error) {
	if f := FormatFor(filename); f != nil {
		return f.Extract(filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return string(data), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// detectItems runs heading detection on text with det, or with the default
// detector when det is nil. It returns nil when nothing was found.
func detectItems(det *autotoc.Detector, text string) []autotoc.Item {
	if det == nil {
		det = autotoc.New(autotoc.DefaultParams())
	}
	res, ok := det.Detect(text)
	if !ok {
		return nil
	}
	return res.Items
}
