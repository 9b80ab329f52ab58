// Package encoding resolves source encoding labels and decodes raw input
// bytes into UTF-8.
//
// Labels follow the WHATWG Encoding Standard index: matching is
// case-insensitive and every standard alias is accepted, so "latin1",
// "ISO-8859-1" and "windows-1252" all name the same decoder. Decoding never
// fails; malformed input becomes U+FFFD. A Decoder is incremental: a
// multi-byte sequence cut off at the end of a read is left unconsumed so the
// caller can retry it once the rest of the bytes arrive.
package encoding
