// Package scraper turns an fcf.cat match report ("acta") into a two-team roster.
//
// The pipeline is fetch -> parse -> extract -> validate. Fetching is delegated
// to a Fetcher, parsing to goquery, and extraction runs an ordered chain of
// strategies (labelled tables, then labelled headings) against the parsed
// document, keeping the first result that passes validation. Individual rows
// that cannot be parsed are dropped; a document that does not yield exactly two
// populated teams is rejected as a whole.
package scraper
