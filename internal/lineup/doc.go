// Package lineup provides the roster data model shared by the scraper, the match
// session and the exporters.
//
// A Roster holds exactly two teams. Each Team keeps its players in display order
// (starters first, then substitutes) and every Player carries an identifier that
// is generated locally, never scraped, so repeated imports of the same match
// never produce colliding ids.
package lineup
