package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const delegatePromptFormat = `Extract job application information from this email. Return ONLY a JSON object with this exact structure:
{
    "company": "company name",
    "role": "job position or role",
    "status": "Applied/Interview/Assessment/Offer/Rejected",
    "notes": "key details like next steps, deadlines, salary, etc."
}

Email Subject: %s
From: %s
Date: %s
Email Body: %s`

var errNoJSONObject = errors.New("no JSON object in reply")

// DelegateReply is the JSON object a text generation service is asked to return
type DelegateReply struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// ParseDelegateReply decodes the span from the first '{' to the last '}' of a free-text reply
func ParseDelegateReply(text string) (*DelegateReply, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, errNoJSONObject
	}

	var reply DelegateReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("parse reply JSON: %w", err)
	}
	return &reply, nil
}

// BuildDelegatePrompt renders the extraction instruction for one email
func BuildDelegatePrompt(email *Email, date string) string {
	return fmt.Sprintf(delegatePromptFormat, email.Subject, email.From, date, email.Body)
}

// DelegateExtractor asks a text generation service to extract the record
type DelegateExtractor struct {
	client   LLMClient
	location *time.Location
	logger   *zap.Logger
}

// NewDelegateExtractor creates an extractor backed by client
func NewDelegateExtractor(client LLMClient, loc *time.Location, logger *zap.Logger) *DelegateExtractor {
	return &DelegateExtractor{
		client:   client,
		location: loc,
		logger:   logger,
	}
}

// Extract calls the delegate and fills missing fields with the rule-based defaults
func (e *DelegateExtractor) Extract(ctx context.Context, email *Email) (*ApplicationRecord, error) {
	date := FormatDate(email.Date, e.location)

	text, err := e.client.Generate(ctx, BuildDelegatePrompt(email, date))
	if err != nil {
		return nil, &ExtractionError{MessageID: email.ID, Err: err}
	}

	reply, err := ParseDelegateReply(text)
	if err != nil {
		e.logger.Debug("Unparseable delegate reply",
			zap.String("message_id", email.ID),
			zap.String("reply", text))
		return nil, &ExtractionError{MessageID: email.ID, Err: err}
	}

	record := &ApplicationRecord{
		Company: strings.TrimSpace(reply.Company),
		Role:    strings.TrimSpace(reply.Role),
		Date:    date,
		Status:  ParseStatus(reply.Status),
		Subject: email.Subject,
		Notes:   strings.TrimSpace(reply.Notes),
	}
	if record.Company == "" {
		record.Company = CompanyFromSender(email.From)
	}
	if record.Role == "" {
		record.Role = UnknownRole
	}

	return record, nil
}
