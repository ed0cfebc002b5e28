package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/applytrack/internal/utils"
)

// SenderFilter decides whether a sender should be left out of a run
type SenderFilter interface {
	IsIgnored(from string) bool
}

// Session carries everything one run needs. It is built per run and discarded afterwards.
type Session struct {
	Mail       MailProvider
	Extractor  Extractor
	OnProgress func(Progress)
}

func (s *Session) report(p Progress) {
	if s.OnProgress != nil {
		s.OnProgress(p)
	}
}

// TrackerService runs the search, fetch, extract, aggregate cycle
type TrackerService struct {
	query         string
	senderFilter  SenderFilter
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	callTimeout   time.Duration
	limiter       *rate.Limiter
}

// NewTrackerService creates a new tracker service.
// A zero minInterval disables pacing between messages.
func NewTrackerService(
	query string,
	senderFilter SenderFilter,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	callTimeout time.Duration,
	minInterval time.Duration,
) *TrackerService {
	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	return &TrackerService{
		query:         query,
		senderFilter:  senderFilter,
		textProcessor: textProcessor,
		logger:        logger,
		callTimeout:   callTimeout,
		limiter:       limiter,
	}
}

// Query returns the search query used for every run
func (s *TrackerService) Query() string {
	return s.query
}

// Run processes every matching message in list order.
// Auth and fetch failures abort the run and discard partial results;
// extraction failures skip the message.
func (s *TrackerService) Run(ctx context.Context, sess *Session) (*RunResult, error) {
	ids, err := s.listMessages(ctx, sess.Mail)
	if err != nil {
		sess.report(Progress{})
		return nil, err
	}

	if len(ids) == 0 {
		sess.report(Progress{})
		return nil, ErrNoMessages
	}

	s.logger.Info("Found application emails", zap.Int("count", len(ids)))

	result := &RunResult{Found: len(ids)}
	records := make([]ApplicationRecord, 0, len(ids))

	for i, id := range ids {
		if err := s.wait(ctx); err != nil {
			sess.report(Progress{})
			return nil, err
		}

		msg, err := s.fetchMessage(ctx, sess.Mail, id)
		if err != nil {
			sess.report(Progress{})
			return nil, err
		}

		email := s.decode(msg)

		switch {
		case s.senderFilter != nil && s.senderFilter.IsIgnored(email.From):
			s.logger.Debug("Ignoring sender", zap.String("message_id", id), zap.String("sender", email.From))
			result.Ignored++
		default:
			record, err := s.extract(ctx, sess.Extractor, email)
			if err != nil {
				s.logger.Warn("Skipping message", zap.String("message_id", id), zap.Error(err))
				result.Skipped++
				break
			}
			records = append(records, *record)
		}

		sess.report(Progress{Processed: i + 1, Total: len(ids)})
	}

	result.Records = records
	result.Summary = Summarize(records)

	s.logger.Info("Run complete",
		zap.Int("records", len(records)),
		zap.Int("skipped", result.Skipped),
		zap.Int("ignored", result.Ignored))

	return result, nil
}

func (s *TrackerService) wait(ctx context.Context) error {
	if s.limiter != nil {
		return s.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (s *TrackerService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

func (s *TrackerService) listMessages(ctx context.Context, mail MailProvider) ([]string, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	ids, err := mail.ListMessageIDs(callCtx, s.query)
	if err != nil {
		return nil, asRunError(err, &FetchError{Op: "list", Err: err})
	}
	return ids, nil
}

func (s *TrackerService) fetchMessage(ctx context.Context, mail MailProvider, id string) (*Message, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	msg, err := mail.GetMessage(callCtx, id)
	if err != nil {
		return nil, asRunError(err, &FetchError{Op: "get", MessageID: id, Err: err})
	}
	return msg, nil
}

func (s *TrackerService) decode(msg *Message) *Email {
	body, err := DecodeBody(msg.Payload)
	if err != nil {
		s.logger.Warn("Undecodable message body", zap.String("message_id", msg.ID), zap.Error(err))
	}

	return &Email{
		ID:      msg.ID,
		From:    s.textProcessor.SanitizeUTF8(msg.Header("From")),
		Subject: s.textProcessor.SanitizeUTF8(msg.Header("Subject")),
		Date:    msg.Header("Date"),
		Body:    body,
	}
}

func (s *TrackerService) extract(ctx context.Context, extractor Extractor, email *Email) (*ApplicationRecord, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	record, err := extractor.Extract(callCtx, email)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) {
			return nil, err
		}
		return nil, &ExtractionError{MessageID: email.ID, Err: err}
	}
	return record, nil
}

// asRunError keeps auth and fetch errors as they are and wraps everything else in fallback
func asRunError(err error, fallback *FetchError) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return err
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return err
	}
	return fallback
}
