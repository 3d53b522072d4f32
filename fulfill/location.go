package fulfill

import "strings"

// The two fixed location groups. Every location maps to exactly one.
const (
	GroupSushi = "sushi"
	GroupPoki  = "poki"
)

// GetLocationGroup maps a location to its group by substring match on name
// and short code. Total: anything that doesn't look like a poki location is
// sushi.
func GetLocationGroup(name, shortCode string) string {
	s := strings.ToLower(name + " " + shortCode)
	if strings.Contains(s, "poki") || strings.Contains(s, "poke") {
		return GroupPoki
	}
	return GroupSushi
}
