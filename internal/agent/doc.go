// Package agent contains the command interpreter that turns one line of
// free text into exactly one schedule operation. Lines are classified against
// an ordered rule table (add, view by date, view upcoming, delete, help) with
// first-match-wins semantics, arguments are resolved into dates and times,
// and every outcome, including invalid input, is rendered as a single
// response string.
package agent
