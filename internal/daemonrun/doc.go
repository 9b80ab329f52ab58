// Package daemonrun wires the configured components into one tail session:
// logger, encoding, single-instance lock, position store, engine and output
// sink, in that order, so that a rejected invocation never creates files.
package daemonrun
