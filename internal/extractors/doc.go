// Package extractors provides implementations of the Extractor
// interface for the supported content kinds. Each extractor knows how
// to turn one family of raw bytes into normalised text with section
// boundaries.
//
// Extractors are registered with the Registry at startup; dispatch is
// by content kind and priority, never by branching on kind elsewhere.
package extractors
