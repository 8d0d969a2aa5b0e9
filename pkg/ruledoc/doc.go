// Package ruledoc holds a rule document after text decoding and before
// compilation: an ordered tree of maps, lists and scalars.
//
// Key order is significant. A rule's filters are compiled, and their
// messages emitted, in the order the keys appear in the file, so both
// decoders here (YAML and JSON) preserve it. Every accessor returns an
// explicit ok flag instead of a zero value; the compiler turns a false ok
// into a named error.
package ruledoc
