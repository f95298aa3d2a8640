// Package validation contiene los chequeos de formato compartidos por los services.
package validation

import "regexp"

// Email rules:
// - Exactly one "@" separating a non-empty local part and domain.
// - No whitespace anywhere.
// - Domain contains a "." with at least one character on each side.
//
// Examples valid: a@x.com, first.last+tag@mail.co.uk, a..b@x.com
// Examples invalid: "", a@x, @x.com, a@.com, "a b@x.com", a@@x.com.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail returns true if s looks like an e-mail address. It does not trim.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
