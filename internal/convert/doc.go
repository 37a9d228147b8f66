// Package convert selects the per-generation converter for a source and
// binds to it.
//
// A Dispatcher starts unresolved. The first call that detects (or is handed)
// a generation binds it; later calls for the other generation fail with a
// version mismatch. NewForVersion creates a dispatcher that is bound from the
// start.
package convert
