package pdi

import (
	"regexp"
	"strings"
)

var unsafeIDChars = regexp.MustCompile(`[&/\\#,+()$~%.'":*?<>{}\s\v\p{Z}\x{FEFF}]`)

// IDString turns a display name into a path-safe token for state ids.
// Downstream storage paths are split on these tokens, so the replaced set is fixed.
func IDString(name string) string {
	return strings.ToLower(unsafeIDChars.ReplaceAllString(name, "_"))
}
