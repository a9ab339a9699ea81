package colref

import "strings"

// ToIndex converts a spreadsheet column label ("A", "AB") to a 0-based index.
// Letters are case-insensitive. An empty label returns -1, which callers use
// to detect an unset column.
func ToIndex(letters string) int {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	result := 0
	for _, char := range letters {
		result = result*26 + int(char-'A'+1)
	}
	return result - 1
}

// Valid reports whether letters is a non-empty run of A-Z (any case).
func Valid(letters string) bool {
	letters = strings.TrimSpace(letters)
	if letters == "" {
		return false
	}
	for _, char := range letters {
		if !(char >= 'A' && char <= 'Z') && !(char >= 'a' && char <= 'z') {
			return false
		}
	}
	return true
}

// Normalize returns the trimmed upper-case form used in formulas.
func Normalize(letters string) string {
	return strings.ToUpper(strings.TrimSpace(letters))
}
