package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// UnknownRole is used when no role pattern matches and the delegate supplies none
	UnknownRole = "Unknown Position"
	// UnknownDate is used when the Date header is missing or unparseable
	UnknownDate = "Unknown date"
)

// Status is the stage an application has reached
type Status string

const (
	StatusApplied    Status = "Applied"
	StatusInterview  Status = "Interview"
	StatusAssessment Status = "Assessment"
	StatusOffer      Status = "Offer"
	StatusRejected   Status = "Rejected"
)

// ParseStatus maps free text onto one of the five statuses.
// Anything unrecognised is Applied.
func ParseStatus(s string) Status {
	normalized := cases.Title(language.English).String(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))

	switch normalized {
	case "Interview", "Interviewing", "Phone Screen", "Screening":
		return StatusInterview
	case "Assessment", "Oa", "Online Assessment", "Test", "Assignment", "Challenge":
		return StatusAssessment
	case "Offer", "Accepted", "Offered":
		return StatusOffer
	case "Rejected", "Rejection", "Declined", "Not Selected":
		return StatusRejected
	default:
		return StatusApplied
	}
}

// Header is a single message header, kept in provider order
type Header struct {
	Name  string
	Value string
}

// MessagePart is one node of a message payload tree.
// Data holds the base64url encoded body as delivered by the provider,
// in Charset (from the part's Content-Type) when one is declared.
type MessagePart struct {
	MimeType string
	Charset  string
	Data     string
	Parts    []*MessagePart
}

// Message is one fetched email
type Message struct {
	ID      string
	Headers []Header
	Payload *MessagePart
}

// Header returns the value of the first header with the given name, ignoring case
func (m *Message) Header(name string) string {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Email is the decoded view of a message handed to an extractor
type Email struct {
	ID      string
	From    string
	Subject string
	Date    string
	Body    string
}

// ApplicationRecord is one extracted job application
type ApplicationRecord struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Date    string `json:"date"`
	Status  Status `json:"status"`
	Subject string `json:"subject"`
	Notes   string `json:"notes"`
}

// Summary holds the aggregate counts shown above the table
type Summary struct {
	Total      int `json:"total"`
	Interviews int `json:"interviews"`
	Offers     int `json:"offers"`
	Rejections int `json:"rejections"`
}

// Progress reports how far a run has got
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Percent returns the completed share of the run as 0-100
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Processed * 100 / p.Total
}

// RunResult is the outcome of one search, fetch, extract, aggregate cycle
type RunResult struct {
	Records []ApplicationRecord `json:"records"`
	Summary Summary             `json:"summary"`
	Found   int                 `json:"found"`
	Skipped int                 `json:"skipped"`
	Ignored int                 `json:"ignored"`
}

// Settings is the persisted preference set
type Settings struct {
	APIKey        string `json:"-"`
	Notifications bool   `json:"notifications"`
	AutoSync      bool   `json:"auto_sync"`
}

// HasAPIKey reports whether a delegate credential is stored
func (s *Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}
