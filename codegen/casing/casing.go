// Package casing converts and validates identifiers for generated code.
package casing

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && unicode.IsUpper(r) {
			// No underscore inside an acronym, except before its last letter
			// when a lowercase letter follows.
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevSep := runes[i-1] == '_'

			if !prevSep && (!prevUpper || nextLower) {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// ToPascalCase converts snake_case, kebab-case, dotted or spaced words to
// PascalCase. The rest of each word is kept as-is.
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, isWordBreak)

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}

	return result.String()
}

// ToScreamingPascal converts a SCREAMING_SNAKE constant name such as
// SOURCE_PATH to SourcePath.
func ToScreamingPascal(s string) string {
	return ToPascalCase(strings.ToLower(s))
}

func isWordBreak(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// IsIdent reports whether s is an identifier: a letter or underscore
// followed by letters, digits and underscores, and not a lone underscore.
func IsIdent(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// IdentProblem describes why s is not an identifier, or returns "".
func IdentProblem(s string) string {
	switch {
	case s == "":
		return "identifier is empty"
	case s == "_":
		return "a lone underscore is not a name"
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r):
			if i == 0 {
				return "identifier starts with a digit"
			}
		default:
			return "identifier contains " + quoteRune(r)
		}
	}
	return ""
}

func quoteRune(r rune) string {
	if unicode.IsSpace(r) {
		return "whitespace"
	}
	return "'" + string(r) + "'"
}
