// Package streaming accumulates incremental model output.
package streaming

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a sequence of byte chunks into UTF-8 text. A code point split
// across two chunks is held back until its remaining bytes arrive; invalid
// bytes decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	scratch []byte
}

// NewDecoder returns a Decoder for UTF-8 input.
func NewDecoder() *Decoder {
	t := unicode.UTF8.NewDecoder()
	t.Reset()
	return &Decoder{
		t:       t,
		scratch: make([]byte, 4096),
	}
}

// Decode returns the text completed by chunk. The result may be empty when
// chunk only holds the start of a multi-byte sequence.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	return d.run(src, false)
}

// Flush decodes whatever is still held back. An incomplete trailing sequence
// becomes U+FFFD.
func (d *Decoder) Flush() (string, error) {
	if len(d.pending) == 0 {
		return "", nil
	}
	src := d.pending
	d.pending = nil
	return d.run(src, true)
}

func (d *Decoder) run(src []byte, atEOF bool) (string, error) {
	var out []byte
	for {
		nDst, nSrc, err := d.t.Transform(d.scratch, src, atEOF)
		out = append(out, d.scratch[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			d.pending = d.pending[:0]
			return string(out), nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append(d.pending[:0], src...)
			return string(out), nil
		default:
			return string(out), err
		}
	}
}
