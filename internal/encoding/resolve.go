package encoding

import (
	"errors"
	"fmt"
	"strings"

	textencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnsupported is returned for labels that name no known encoding.
var ErrUnsupported = errors.New("unsupported encoding")

// Encoding is a resolved source encoding.
type Encoding struct {
	label string
	name  string
	enc   textencoding.Encoding
}

// Resolve maps a user supplied label to an Encoding.
func Resolve(label string) (*Encoding, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty label", ErrUnsupported)
	}
	enc, err := htmlindex.Get(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(trimmed)
	}
	return &Encoding{label: trimmed, name: name, enc: enc}, nil
}

// Name returns the canonical encoding name, e.g. "windows-1252".
func (e *Encoding) Name() string {
	return e.name
}

// Label returns the label the encoding was resolved from.
func (e *Encoding) Label() string {
	return e.label
}

// NewDecoder returns a fresh incremental decoder.
func (e *Encoding) NewDecoder() *Decoder {
	return newDecoder(e.enc.NewDecoder())
}
