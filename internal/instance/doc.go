// Package instance keeps two tailers with the same effective configuration
// from running at the same time on one host.
//
// A fingerprint is derived from the resolved invocation arguments and names
// an advisory lock file. The lock is taken with flock(2) (LockFileEx on
// Windows), so the operating system drops it when the holder exits for any
// reason and a crashed run never blocks the next start. Differently
// configured tailers hash to different lock files and coexist.
package instance
