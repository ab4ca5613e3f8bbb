package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from user supplied text fields (card details,
// contact messages) to prevent stored XSS on public card pages.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
