// Package main hosts the bcfkit CLI entrypoint and command graph.
//
// The root command converts a BCF archive to a JSON directory or back,
// picking the direction from the source. Subcommands detect the schema
// generation of a source, list its topics and scaffold a configuration
// file. Conversion logic lives in internal/convert; this package only
// resolves configuration and logging and renders results.
package main
