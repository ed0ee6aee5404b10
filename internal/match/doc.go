// Package match tracks a live match: the clock, the half, and the log of goals,
// cards, substitutions, corners and shots recorded against two line-ups.
//
// The clock is an explicit state machine (pre-match, playing, paused, finished)
// driven by commands. Elapsed time is derived from the instant play last
// resumed plus the time banked before it, so reading the clock never depends
// on a ticking callback and tests can inject a fake clock.
package match
