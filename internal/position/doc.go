// Package position persists the tail cursor as a single decimal offset.
//
// The record is a tiny plain-text file holding only the ASCII digits of the
// offset: no newline, no header, no history. Writes replace the whole file,
// and reads treat a missing or unparsable record as "no prior progress" so a
// damaged record never prevents the tailer from starting.
package position
