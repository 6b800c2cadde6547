package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength bounds label names so they fit the history table
const MaxLabelLength = 64

// NormalizeLabel trims a label name and collapses inner whitespace.
// "  Deep   work " becomes "Deep work".
func NormalizeLabel(input string) (string, error) {
	name := strings.Join(strings.Fields(input), " ")

	if name == "" {
		return "", fmt.Errorf("label name is required")
	}
	if utf8.RuneCountInString(name) > MaxLabelLength {
		return "", fmt.Errorf("label name must be at most %d characters", MaxLabelLength)
	}

	return name, nil
}
