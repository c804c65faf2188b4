package llm

import "strings"

// ExtractSQL removes a single surrounding markdown code fence from a model
// response. Models frequently wrap output in ```sql ... ``` despite being
// told not to; exactly one leading and one trailing fence are stripped and
// the remainder is whitespace-trimmed. Responses without fences pass through
// unchanged apart from trimming.
func ExtractSQL(response string) string {
	s := strings.TrimSpace(response)

	if strings.HasPrefix(s, "```sql") {
		s = s[len("```sql"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}

	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}

	return strings.TrimSpace(s)
}
