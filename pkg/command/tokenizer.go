package command

import (
	"strings"
	"unicode"
)

// Tokenize splits line on whitespace. A double quoted run is part of one token and loses its
// quotes, so `"Team sync"` is the single token Team sync and `""` is an empty token.
func Tokenize(line string) ([]string, error) {
	tokens := make([]string, 0)
	var (
		current  strings.Builder
		inQuotes bool
		inToken  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			inToken = true
		case unicode.IsSpace(r) && !inQuotes:
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inQuotes {
		return nil, &ParseError{Line: line, Reason: "unterminated quote"}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
