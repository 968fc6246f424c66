// Package packaging is a thin adapter exposing internal/docmodel's package
// I/O under the names the HTTP service layer expects. The original opc-
// relationship-graph implementation this package carried depended on
// generated opc code not present in the retrieved source (see DESIGN.md);
// this adapter re-points the same Open/Save surface at docmodel, the
// self-contained content-type-classified engine the rest of the pipeline
// is built on, so the service/handler layer keeps working unmodified.
package packaging

import (
	"io"

	"github.com/mesocyclon/docxpipeline/internal/docmodel"
)

// Document is the opened package, re-exported from docmodel.
type Document = docmodel.Document

// OpenReader opens a .docx of the given size read from r.
func OpenReader(r io.ReaderAt, size int64) (*Document, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	return docmodel.Open(data)
}

// OpenBytes opens a .docx from in-memory bytes.
func OpenBytes(data []byte) (*Document, error) {
	return docmodel.Open(data)
}
