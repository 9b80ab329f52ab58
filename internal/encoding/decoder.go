package encoding

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxPending bounds how many trailing bytes a Decoder will leave unconsumed
// while waiting for the rest of a character. Longer tails are flushed with
// replacement characters.
const MaxPending = 16

const scratchSize = 4096

var replacement = []byte(string(utf8.RuneError))

// Decoder converts source bytes to UTF-8 across successive reads.
type Decoder struct {
	base    transform.Transformer
	t       transform.Transformer
	sniff   bool
	scratch []byte
}

func newDecoder(t transform.Transformer) *Decoder {
	return &Decoder{base: t, t: t, scratch: make([]byte, scratchSize)}
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Decode converts src and reports how many bytes of src were consumed.
// Unconsumed bytes are an incomplete trailing sequence; pass them again,
// followed by newer bytes, on the next call.
func (d *Decoder) Decode(src []byte) ([]byte, int) {
	out := make([]byte, 0, len(src)+len(src)/2)
	consumed := 0
	if d.sniff {
		n, ok := d.sniffBOM(src)
		if !ok {
			return out, 0
		}
		consumed = n
	}
	for consumed < len(src) {
		nDst, nSrc, err := d.t.Transform(d.scratch, src[consumed:], false)
		out = append(out, d.scratch[:nDst]...)
		consumed += nSrc

		switch {
		case err == nil:
			return out, consumed
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				d.scratch = make([]byte, 2*len(d.scratch))
			}
		case errors.Is(err, transform.ErrShortSrc):
			pending := len(src) - consumed
			if pending <= MaxPending {
				return out, consumed
			}
			out, consumed = d.flush(out, src, consumed)
		default:
			// Decoders replace malformed input themselves; anything else is
			// skipped one byte at a time.
			out = append(out, replacement...)
			consumed++
		}
	}
	return out, consumed
}

// flush forces the transformer to treat src[consumed:] as final input.
func (d *Decoder) flush(out, src []byte, consumed int) ([]byte, int) {
	for consumed < len(src) {
		nDst, nSrc, err := d.t.Transform(d.scratch, src[consumed:], true)
		out = append(out, d.scratch[:nDst]...)
		consumed += nSrc
		if err == nil {
			break
		}
		if errors.Is(err, transform.ErrShortDst) && (nDst > 0 || nSrc > 0) {
			continue
		}
		if errors.Is(err, transform.ErrShortDst) {
			d.scratch = make([]byte, 2*len(d.scratch))
			continue
		}
		out = append(out, replacement...)
		consumed++
	}
	d.t.Reset()
	return out, consumed
}

// Reset prepares the decoder for a stream that starts over at offset 0,
// e.g. after truncation. A byte order mark at the start of that stream
// selects UTF-8 or UTF-16 and is dropped from the output.
func (d *Decoder) Reset() {
	d.base.Reset()
	d.t = d.base
	d.sniff = true
}

// sniffBOM inspects the first bytes of a stream and returns how many of them
// form a byte order mark. It reports false when src is too short to decide.
func (d *Decoder) sniffBOM(src []byte) (int, bool) {
	switch {
	case bytes.HasPrefix(src, utf8BOM):
		d.t = unicode.UTF8.NewDecoder()
		d.sniff = false
		return len(utf8BOM), true
	case bytes.HasPrefix(src, utf16LEBOM):
		d.t = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		d.sniff = false
		return len(utf16LEBOM), true
	case bytes.HasPrefix(src, utf16BEBOM):
		d.t = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		d.sniff = false
		return len(utf16BEBOM), true
	case len(src) == 0, len(src) < len(utf8BOM) && bytes.HasPrefix(utf8BOM, src):
		return 0, false
	case len(src) == 1 && (src[0] == utf16LEBOM[0] || src[0] == utf16BEBOM[0]):
		return 0, false
	}
	d.sniff = false
	return 0, true
}
