// Package archive reads and writes the zip container of a BCF file.
//
// Reader indexes every entry once and exposes topic folders (first-level
// directories holding markup.bcf) in name order. Writer produces
// deterministic archives: entries carry a zero modification time and are
// written in the order the caller emits them. Writers created with Create
// hold an advisory lock on the target and replace it atomically on Commit.
package archive
