// Package fsutil holds the small durability helpers shared by the position
// store and the output sink: flushing file data to stable storage and
// replacing a file's contents in a single rename.
package fsutil
