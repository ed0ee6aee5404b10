// Package cli implements the acta-lineup command-line interface.
//
// The cli package provides the Cobra-based commands: scrape imports a roster
// from a match report URL or a saved HTML file, serve runs the HTTP API, and
// export converts a saved match to JSON or CSV. Configuration comes from the
// environment (see internal/config) and is overridden by flags.
package cli
