// Package nexus implements a tolerant reader for the NEXUS interchange
// format as exported by TreeBASE.
//
// TreeBASE exports are frequently messy: square-bracket comments nest and
// sometimes never close, taxon labels may be quoted and contain almost any
// character, keywords change case between studies, and matrices arrive
// interleaved with continuation lines that drop the taxon name. The package
// therefore works in small tolerant layers:
//
//   - StripComments removes [bracketed] comments, quote-aware.
//   - ExtractBlock finds a keyword block and its ';' terminator.
//   - ParseTaxa reads quoted and bare taxon labels.
//   - ParseMatrix assembles interleaved sequence fragments per taxon.
//
// No layer mutates shared state; every parse carries its own state, and
// recoverable problems come back as warning strings for the caller to
// surface, never as logs or panics.
package nexus
