package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding reports a string literal that matched a known SQL
// injection pattern.
type InjectionFinding struct {
	Literal     string // The literal content that was flagged
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// ScreenLiterals extracts the single-quoted string literals from a statement
// and runs each through libinjection. Generated SQL embeds user-provided
// values as literals rather than bind parameters, so the literals are where
// injection payloads surface.
//
// Findings are advisory. Callers decide whether to block or just log.
func ScreenLiterals(sqlQuery string) []InjectionFinding {
	var findings []InjectionFinding
	for _, literal := range extractStringLiterals(sqlQuery) {
		if literal == "" {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			findings = append(findings, InjectionFinding{
				Literal:     literal,
				Fingerprint: string(fingerprint),
			})
		}
	}
	return findings
}

// extractStringLiterals returns the contents of single-quoted literals.
// Doubled quotes ('') inside a literal are unescaped to a single quote.
func extractStringLiterals(sqlQuery string) []string {
	var literals []string
	runes := []rune(sqlQuery)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '\'' {
			continue
		}

		var b strings.Builder
		j := i + 1
		for j < len(runes) {
			if runes[j] == '\'' {
				if j+1 < len(runes) && runes[j+1] == '\'' {
					b.WriteRune('\'')
					j += 2
					continue
				}
				break
			}
			b.WriteRune(runes[j])
			j++
		}
		literals = append(literals, b.String())
		i = j
	}

	return literals
}
