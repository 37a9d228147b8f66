// Package model holds the pieces shared by both BCF schema generations: the
// Bcf graph interface, binary attachments and the validation helpers used by
// the generation validators.
package model
