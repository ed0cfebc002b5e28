package core

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/mikey/applytrack/internal/utils"
)

// dateLayout matches the browser's default short date, e.g. 9/15/2025
const dateLayout = "1/2/2006"

var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:position|role|applying for)[:\s]*([^\n<.,;!?]+)`),
	regexp.MustCompile(`(?i)(?:job title)[:\s]*([^\n<.,;!?]+)`),
	regexp.MustCompile(`(?i)(?:software engineer|frontend developer|backend developer|full stack|data scientist|product manager|ux designer)`),
}

var statusPatterns = map[Status]*regexp.Regexp{
	StatusInterview:  regexp.MustCompile(`(?i)interview|screening|phone screen|meeting|zoom|teams|call`),
	StatusAssessment: regexp.MustCompile(`(?i)assessment|test|assignment|challenge|hackerrank|codility`),
	StatusOffer:      regexp.MustCompile(`(?i)offer|congratulations|welcome|compensation|package|joining`),
	StatusRejected:   regexp.MustCompile(`(?i)reject|not moving|not selected|unfortunately|other candidate|decline`),
}

// statusPrecedence decides between several matching statuses. Offer always wins.
var statusPrecedence = []Status{StatusOffer, StatusRejected, StatusAssessment, StatusInterview}

var notePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)next steps[:\s]*([^\n<.,;!?]+)`),
	regexp.MustCompile(`(?i)deadline[:\s]*([^\n<.,;!?]+)`),
	regexp.MustCompile(`(?i)salary[:\s]*([^\n<.,;!?]+)`),
	regexp.MustCompile(`(?i)location[:\s]*([^\n<.,;!?]+)`),
}

// CompanyFromSender returns the display-name part of a From header
func CompanyFromSender(from string) string {
	name, _, _ := strings.Cut(from, "<")
	return strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
}

// FormatDate renders a Date header as a short date in loc, or UnknownDate
func FormatDate(header string, loc *time.Location) string {
	if strings.TrimSpace(header) == "" {
		return UnknownDate
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return UnknownDate
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// ExtractRole tries each role pattern against the body, then the subject
func ExtractRole(subject, body string) string {
	for _, pattern := range rolePatterns {
		for _, text := range []string{body, subject} {
			match := pattern.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			role := match[0]
			if len(match) > 1 && match[1] != "" {
				role = match[1]
			}
			if role = utils.CollapseWhitespace(role); role != "" {
				return role
			}
		}
	}
	return UnknownRole
}

// ClassifyStatus tests every status pattern and resolves ties by statusPrecedence
func ClassifyStatus(subject, body string) Status {
	matched := make(map[Status]bool, len(statusPatterns))
	for status, pattern := range statusPatterns {
		if pattern.MatchString(subject) || pattern.MatchString(body) {
			matched[status] = true
		}
	}

	for _, status := range statusPrecedence {
		if matched[status] {
			return status
		}
	}
	return StatusApplied
}

// ExtractNotes collects the first match of each note pattern, in pattern order
func ExtractNotes(body string) string {
	var notes []string
	for _, pattern := range notePatterns {
		if match := pattern.FindString(body); match != "" {
			notes = append(notes, match)
		}
	}
	return strings.Join(notes, "; ")
}

// RuleExtractor classifies emails with fixed patterns and never calls out
type RuleExtractor struct {
	location *time.Location
}

// NewRuleExtractor creates a rule-based extractor that formats dates in loc
func NewRuleExtractor(loc *time.Location) *RuleExtractor {
	return &RuleExtractor{location: loc}
}

// Extract builds a record from the email. It never fails.
func (e *RuleExtractor) Extract(_ context.Context, email *Email) (*ApplicationRecord, error) {
	return &ApplicationRecord{
		Company: CompanyFromSender(email.From),
		Role:    ExtractRole(email.Subject, email.Body),
		Date:    FormatDate(email.Date, e.location),
		Status:  ClassifyStatus(email.Subject, email.Body),
		Subject: email.Subject,
		Notes:   ExtractNotes(email.Body),
	}, nil
}
