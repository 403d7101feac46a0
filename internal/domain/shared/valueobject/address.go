package valueobject

import "strings"

// FormatAddress renders postal address components one per line, skipping
// blanks. City, state and postal code share a line, comma separated.
func FormatAddress(line1, line2, city, state, postalCode, country string) string {
	parts := make([]string, 0, 4)
	if line1 != "" {
		parts = append(parts, line1)
	}
	if line2 != "" {
		parts = append(parts, line2)
	}
	cityParts := make([]string, 0, 3)
	for _, p := range []string{city, state, postalCode} {
		if p != "" {
			cityParts = append(cityParts, p)
		}
	}
	if len(cityParts) > 0 {
		parts = append(parts, strings.Join(cityParts, ", "))
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, "\n")
}
