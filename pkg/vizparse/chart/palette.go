// Package chart infers default chart configurations from datasets and
// applies the editing operations a user performs on them.
package chart

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPalette is the fixed set of colors points are painted with.
// The repeated trailing entries are part of the palette.
var DefaultPalette = []string{
	"#FF6384",
	"#36A2EB",
	"#FFCE56",
	"#4BC0C0",
	"#9966FF",
	"#FF9F40",
	"#FF6384",
	"#36A2EB",
}

// ColorPolicy decides how points beyond the palette length are colored.
type ColorPolicy string

const (
	// PolicyCycle wraps around the palette so every point gets a color.
	PolicyCycle ColorPolicy = "cycle"
	// PolicyTruncate colors only the first len(palette) points.
	PolicyTruncate ColorPolicy = "truncate"
)

// ParseColorPolicy parses a policy name. Empty means PolicyCycle.
func ParseColorPolicy(s string) (ColorPolicy, error) {
	switch p := ColorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyCycle, nil
	case PolicyCycle, PolicyTruncate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown color policy %q", s)
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether s is a #RGB or #RRGGBB hex color.
func ValidColor(s string) bool {
	return hexColor.MatchString(s)
}

// colors returns n colors drawn from palette under policy.
func colors(palette []string, policy ColorPolicy, n int) []string {
	if len(palette) == 0 {
		return []string{}
	}
	if policy == PolicyTruncate && n > len(palette) {
		n = len(palette)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
