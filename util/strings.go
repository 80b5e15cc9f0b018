package util

import "strings"

// CleanString strips C0 control characters (except newline and carriage
// return) that upstream titles and descriptions occasionally carry.
func CleanString(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
