// Package storage writes match exports and scraped rosters to a data directory.
//
// Files are plain JSON or CSV named after the two teams ("<home>-vs-<away>"),
// so they can be opened or re-imported without the service running.
package storage
