package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// CombinationSeparator joins the keys of a combination string.
const CombinationSeparator = "+"

// InvalidCombinationError describes why a combination was rejected.
type InvalidCombinationError struct {
	Combination string
	Reason      string
}

func (e *InvalidCombinationError) Error() string {
	return fmt.Sprintf("invalid key combination %q: %s", e.Combination, e.Reason)
}

func (e *InvalidCombinationError) Is(target error) bool {
	return target == ErrInvalidCombination
}

// Combination is an ordered list of keys that together trigger a shortcut.
type Combination struct {
	tokens []Token
}

// ParseCombination splits a string such as "control+shift+a". The numpad
// plus key is spelled "numpad plus" here.
func ParseCombination(s string) (Combination, error) {
	if strings.TrimSpace(s) == "" {
		return Combination{}, &InvalidCombinationError{Combination: s, Reason: "empty"}
	}

	parts := strings.Split(s, CombinationSeparator)
	tokens := make([]Token, 0, len(parts))
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			return Combination{}, &InvalidCombinationError{
				Combination: s,
				Reason:      fmt.Sprintf("empty key at position %d", i),
			}
		}
		tokens = append(tokens, ParseToken(part))
	}
	return Combination{tokens: tokens}, nil
}

// CombinationOf builds a combination from already separated tokens.
func CombinationOf(tokens ...Token) (Combination, error) {
	if len(tokens) == 0 {
		return Combination{}, &InvalidCombinationError{Reason: "no keys"}
	}
	for i, t := range tokens {
		if !t.numeric && strings.TrimSpace(t.name) == "" {
			return Combination{}, &InvalidCombinationError{
				Combination: joinTokens(tokens),
				Reason:      fmt.Sprintf("empty key at position %d", i),
			}
		}
	}
	return Combination{tokens: append([]Token(nil), tokens...)}, nil
}

// CombinationOfNames is CombinationOf for a list of strings, parsed like ParseToken.
func CombinationOfNames(names ...string) (Combination, error) {
	tokens := make([]Token, len(names))
	for i, n := range names {
		tokens[i] = ParseToken(n)
	}
	return CombinationOf(tokens...)
}

// CombinationOfCodes builds a combination of raw codes.
func CombinationOfCodes(codes ...Code) (Combination, error) {
	tokens := make([]Token, len(codes))
	for i, c := range codes {
		tokens[i] = Raw(c)
	}
	return CombinationOf(tokens...)
}

// IsZero reports whether c holds no keys.
func (c Combination) IsZero() bool {
	return len(c.tokens) == 0
}

// Tokens returns a copy of the combination's keys.
func (c Combination) Tokens() []Token {
	return append([]Token(nil), c.tokens...)
}

// Resolve maps every key to its native code, in order.
func (c Combination) Resolve() ([]Code, error) {
	if c.IsZero() {
		return nil, &InvalidCombinationError{Reason: "no keys"}
	}
	codes := make([]Code, len(c.tokens))
	for i, t := range c.tokens {
		code, err := Resolve(t)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// Canonical returns the resolved code list joined by the separator. Two
// combinations that resolve to the same codes share the same canonical form,
// whichever spelling they were built from.
func (c Combination) Canonical() (string, error) {
	codes, err := c.Resolve()
	if err != nil {
		return "", err
	}
	return JoinCodes(codes), nil
}

func (c Combination) String() string {
	return joinTokens(c.tokens)
}

// JoinCodes renders codes as a combination string of raw codes.
func JoinCodes(codes []Code) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, CombinationSeparator)
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, CombinationSeparator)
}
