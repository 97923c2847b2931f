package models

import (
	"strings"
	"unicode"
)

// StrategyFileName returns the download name for a strategy document,
// "<business_name>_ip_strategy.md". Characters that are unsafe in file names
// or headers are replaced with '_'.
func StrategyFileName(businessName string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(businessName))
	if name == "" {
		name = "business"
	}
	return name + "_ip_strategy.md"
}
