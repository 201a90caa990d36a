package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

// namedColors is the closed set of cosmetic color names (spec.md §3).
var namedColors = map[string]bool{
	"black": true, "white": true, "gray": true, "grey": true,
	"red": true, "green": true, "blue": true, "yellow": true,
	"cyan": true, "magenta": true, "purple": true, "orange": true,
	"pink": true, "brown": true,
}

var (
	hexRGBRe   = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
	hexRRGGBBRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// normalizeColor normalizes a color spec to lowercase #rrggbb or a
// canonical lowercase name.
func normalizeColor(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	c := strings.ToLower(strings.TrimSpace(raw))
	if namedColors[c] {
		return c, nil
	}
	if hexRGBRe.MatchString(raw) {
		h := strings.ToLower(raw[1:])
		return fmt.Sprintf("#%c%c%c%c%c%c", h[0], h[0], h[1], h[1], h[2], h[2]), nil
	}
	if hexRRGGBBRe.MatchString(raw) {
		return c, nil
	}
	return "", fmt.Errorf("invalid color %q: use a named color or hex #RGB/#RRGGBB", raw)
}
