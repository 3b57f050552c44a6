// Package extract locates a SQL statement embedded in a free-text AI
// response. The upstream model gives no formatting guarantees, so the rules
// run from most structured (an explicit ```sql fence) down to bare keyword
// scanning, accepting that the bare rules may over- or under-match on
// ambiguous prose.
package extract

import (
	"regexp"
	"strings"
)

// rule is a single pattern matcher. Submatch 1 is the candidate statement.
type rule struct {
	name string
	re   *regexp.Regexp
}

// Rules are evaluated in order with early exit: the first rule whose match
// yields a non-empty statement wins. All patterns are case-insensitive and
// span newlines.
var rules = []rule{
	{"fenced-sql", regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")},
	{"fenced-select", regexp.MustCompile("(?is)```\\s*(SELECT.*?)\\s*```")},
	{"bare-select", regexp.MustCompile(`(?is)(SELECT\s+.*?(?:;|\n|$))`)},
	{"bare-insert", regexp.MustCompile(`(?is)(INSERT\s+.*?(?:;|\n|$))`)},
	{"bare-update", regexp.MustCompile(`(?is)(UPDATE\s+.*?(?:;|\n|$))`)},
	{"bare-delete", regexp.MustCompile(`(?is)(DELETE\s+.*?(?:;|\n|$))`)},
}

// Extract returns the first SQL statement found in the response text, with
// surrounding whitespace trimmed and at most one trailing semicolon removed.
// ok is false when no rule matches; that is an expected outcome for
// conversational answers, not an error.
func Extract(responseText string) (sql string, ok bool) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(responseText)
		if m == nil {
			continue
		}

		stmt := strings.TrimSpace(m[1])
		stmt = strings.TrimSuffix(stmt, ";")
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			return stmt, true
		}
	}
	return "", false
}
