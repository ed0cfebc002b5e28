package core

import (
	"fmt"
	"strings"
)

// SearchQuery is the mailbox search used to find application emails
type SearchQuery struct {
	// After is a date in the provider's YYYY/MM/DD form; empty means no lower bound
	After    string
	Subjects []string
}

// String renders the query, e.g. after:2025/09/01 (subject:offer OR subject:"next steps")
func (q SearchQuery) String() string {
	terms := make([]string, 0, len(q.Subjects))
	for _, subject := range q.Subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		if strings.ContainsAny(subject, " \t") {
			subject = fmt.Sprintf("%q", subject)
		}
		terms = append(terms, "subject:"+subject)
	}

	var parts []string
	if q.After != "" {
		parts = append(parts, "after:"+q.After)
	}
	if len(terms) > 0 {
		parts = append(parts, "("+strings.Join(terms, " OR ")+")")
	}
	return strings.Join(parts, " ")
}
