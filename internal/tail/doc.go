// Package tail runs the resumable tail-and-transcode loop.
//
// An Engine owns the read cursor for one input file. Each cycle it compares
// the input size with the cursor, resets to the start when the file shrank
// (truncation) or was replaced (rotation), reads what is new, decodes it, and
// appends the text to the output before persisting the advanced cursor. That
// ordering makes a persisted offset N imply that the text for the first N
// input bytes is already in the output; a crash between the two writes
// repeats a span on restart rather than losing it.
//
// The loop is single goroutine and polls on a fixed interval. Read failures
// are retried with capped exponential backoff and escalate to an error once
// the retry budget is spent; output and position write failures are fatal.
package tail
