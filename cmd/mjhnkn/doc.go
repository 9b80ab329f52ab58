// Package main hosts the mjhnkn CLI.
//
// The root command runs a tail session in the foreground until SIGINT or
// SIGTERM. Subcommands inspect a configuration's progress and scaffold a
// config file; they share the root's flags so the same invocation that runs
// a session can be handed to `status`.
package main
