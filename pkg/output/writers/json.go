package writers

import (
	"io"
	"strings"

	"github.com/depgate/depgate/pkg/jsonutil"
	"github.com/depgate/depgate/pkg/output"
)

var _ output.Writer = (*JSONWriter)(nil)

// JSONWriter writes the report envelope as a single JSON document.
type JSONWriter struct {
	w    io.Writer
	opts JSONOptions
}

// JSONOptions configures the JSON writer.
type JSONOptions struct {
	// Pretty enables indented output.
	Pretty bool

	// IndentSize sets the number of spaces for indentation (default 2).
	IndentSize int
}

// NewJSONWriter creates a JSON writer that writes to w.
func NewJSONWriter(w io.Writer, opts JSONOptions) *JSONWriter {
	if opts.IndentSize == 0 {
		opts.IndentSize = 2
	}
	return &JSONWriter{w: w, opts: opts}
}

// Write encodes r followed by a newline.
func (jw *JSONWriter) Write(r *output.Report) error {
	indent := ""
	if jw.opts.Pretty {
		indent = strings.Repeat(" ", jw.opts.IndentSize)
	}
	return jsonutil.MarshalWrite(jw.w, r, indent)
}
