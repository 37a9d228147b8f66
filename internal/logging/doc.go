// Package logging assembles structured slog loggers for bcfkit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so conversion code can tag log lines
// with the operation, source path, topic and schema generation it is working
// on. NewNop returns a logger for tests and library callers that do not want
// output.
package logging
