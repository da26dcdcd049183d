package repository

import "strings"

// likeContains is a case-insensitive substring match; pair it with containsPattern.
const likeContains = "LOWER(%s) LIKE ? ESCAPE '!'"

func containsPattern(fragment string) string {
	escaped := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(strings.ToLower(fragment))
	return "%" + escaped + "%"
}
