// Package sbom holds the interfaces implemented by SBOM format codecs.
package sbom

import (
	"context"
	"io"

	"github.com/quay/sbomkit"
)

// Decoder reads a Document in some SBOM format.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*sbomkit.Document, error)
}

// Encoder writes a Document in some SBOM format.
type Encoder interface {
	Encode(ctx context.Context, w io.Writer, doc *sbomkit.Document) error
}
