package memory

import "strings"

// contextRules is the ordered classification table. First match wins, so
// order is the tie-break policy.
var contextRules = []struct {
	tag      ContextTag
	keywords []string
}{
	{ContextShopping, []string{"shop", "buy", "store"}},
	{ContextMeeting, []string{"meeting", "call", "interview"}},
	{ContextHealth, []string{"doctor", "dentist", "gym"}},
	{ContextSocial, []string{"dinner", "lunch", "coffee"}},
	{ContextWork, []string{"deadline", "project", "presentation"}},
}

// Classify maps an event title (and optional location) to a context tag.
// It is pure, total, and case-insensitive; unmatched input falls back to
// ContextGeneral.
func Classify(title, location string) ContextTag {
	lower := strings.ToLower(title + " " + location)
	for _, rule := range contextRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.tag
			}
		}
	}
	return ContextGeneral
}
