// Package html provides a Normaliser implementation for HTML documents.
// It parses the markup with goquery, drops non-content elements such as
// scripts and navigation, and returns the body text one block per line.
package html
