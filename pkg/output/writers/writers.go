// Package writers renders reports in machine-readable formats.
package writers

import (
	"fmt"
	"io"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output"
)

// Options selects per-format settings for New.
type Options struct {
	// TemplatePath is the template file for the template format.
	TemplatePath string

	// Pretty indents JSON output.
	Pretty bool
}

// New returns the writer for format. The console format is rendered by
// the ui package and is not handled here.
func New(format string, w io.Writer, opts Options) (output.Writer, error) {
	switch format {
	case defaults.FormatJSON:
		return NewJSONWriter(w, JSONOptions{Pretty: opts.Pretty}), nil
	case defaults.FormatJUnit:
		return NewJUnitWriter(w, JUnitOptions{}), nil
	case defaults.FormatTemplate:
		return NewTemplateWriter(w, TemplateConfig{TemplatePath: opts.TemplatePath})
	case defaults.FormatPDF:
		return NewPDFWriter(w, PDFOptions{}), nil
	default:
		return nil, fmt.Errorf("writers: unsupported format %q", format)
	}
}
