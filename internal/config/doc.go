// Package config loads, normalizes, and validates the tailer configuration.
//
// Values are layered: repository defaults, then an optional TOML file, then
// environment variables, then command-line flags, with later layers winning.
// Finalize expands paths against the working directory, derives the position
// record path when none was given, and validates the result, so downstream
// code only ever sees a fully resolved Config. InvocationArgs renders that
// resolved Config canonically for the single-instance fingerprint.
package config
