package core

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/utils"
)

type fakeMail struct {
	ids      []string
	messages map[string]*Message
	listErr  error
	getErr   map[string]error
	fetched  []string
}

func (f *fakeMail) ListMessageIDs(_ context.Context, _ string) ([]string, error) {
	return f.ids, f.listErr
}

func (f *fakeMail) GetMessage(_ context.Context, id string) (*Message, error) {
	f.fetched = append(f.fetched, id)
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	return f.messages[id], nil
}

type fakeExtractor struct {
	fail  map[string]bool
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, email *Email) (*ApplicationRecord, error) {
	f.calls++
	if f.fail[email.ID] {
		return nil, errors.New("delegate unavailable")
	}
	return &ApplicationRecord{
		Company: CompanyFromSender(email.From),
		Subject: email.Subject,
		Status:  ClassifyStatus(email.Subject, email.Body),
	}, nil
}

type prefixFilter string

func (p prefixFilter) IsIgnored(from string) bool {
	return strings.Contains(from, string(p))
}

func newMessage(id, from, subject, body string) *Message {
	return &Message{
		ID: id,
		Headers: []Header{
			{Name: "From", Value: from},
			{Name: "Subject", Value: subject},
			{Name: "Date", Value: "Mon, 15 Sep 2025 10:00:00 +0000"},
		},
		Payload: &MessagePart{
			MimeType: "text/plain",
			Data:     base64.URLEncoding.EncodeToString([]byte(body)),
		},
	}
}

func newTestService(filter SenderFilter) *TrackerService {
	logger := zap.NewNop()
	return NewTrackerService("after:2025/09/01", filter, utils.NewTextProcessor(logger), logger, time.Second, 0)
}

func threeMessages() *fakeMail {
	return &fakeMail{
		ids: []string{"a", "b", "c"},
		messages: map[string]*Message{
			"a": newMessage("a", `"Acme" <jobs@acme.com>`, "Interview invitation", "Let's talk."),
			"b": newMessage("b", `"Globex" <hr@globex.com>`, "Your application", "Unfortunately we went another way."),
			"c": newMessage("c", `"Initech" <no-reply@initech.com>`, "Offer letter", "Congratulations!"),
		},
	}
}

func TestRunProcessesMessagesInOrder(t *testing.T) {
	mail := threeMessages()
	var progress []Progress
	sess := &Session{
		Mail:       mail,
		Extractor:  &fakeExtractor{},
		OnProgress: func(p Progress) { progress = append(progress, p) },
	}

	result, err := newTestService(nil).Run(context.Background(), sess)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "Acme", result.Records[0].Company)
	assert.Equal(t, "Globex", result.Records[1].Company)
	assert.Equal(t, "Initech", result.Records[2].Company)
	assert.Equal(t, Summary{Total: 3, Interviews: 1, Offers: 1, Rejections: 1}, result.Summary)
	assert.Equal(t, 3, result.Found)

	assert.Equal(t, []Progress{
		{Processed: 1, Total: 3},
		{Processed: 2, Total: 3},
		{Processed: 3, Total: 3},
	}, progress)
}

func TestRunNoMessages(t *testing.T) {
	extractor := &fakeExtractor{}
	var progress []Progress
	sess := &Session{
		Mail:       &fakeMail{},
		Extractor:  extractor,
		OnProgress: func(p Progress) { progress = append(progress, p) },
	}

	result, err := newTestService(nil).Run(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoMessages)
	assert.Nil(t, result)
	assert.Zero(t, extractor.calls)
	assert.Equal(t, []Progress{{}}, progress)
}

func TestRunFetchFailureAbortsAndResetsProgress(t *testing.T) {
	mail := threeMessages()
	mail.getErr = map[string]error{"b": errors.New("503 backend error")}
	var progress []Progress
	sess := &Session{
		Mail:       mail,
		Extractor:  &fakeExtractor{},
		OnProgress: func(p Progress) { progress = append(progress, p) },
	}

	result, err := newTestService(nil).Run(context.Background(), sess)
	assert.Nil(t, result)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "get", fetchErr.Op)
	assert.Equal(t, "b", fetchErr.MessageID)

	assert.Equal(t, []string{"a", "b"}, mail.fetched)
	assert.Equal(t, []Progress{{Processed: 1, Total: 3}, {}}, progress)
}

func TestRunListFailures(t *testing.T) {
	t.Run("auth errors pass through", func(t *testing.T) {
		sess := &Session{
			Mail:      &fakeMail{listErr: &AuthError{Err: errors.New("401")}},
			Extractor: &fakeExtractor{},
		}

		_, err := newTestService(nil).Run(context.Background(), sess)

		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("other errors become fetch errors", func(t *testing.T) {
		sess := &Session{
			Mail:      &fakeMail{listErr: errors.New("dial tcp: timeout")},
			Extractor: &fakeExtractor{},
		}

		_, err := newTestService(nil).Run(context.Background(), sess)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "list", fetchErr.Op)
		assert.Empty(t, fetchErr.MessageID)
	})
}

func TestRunSkipsExtractionFailures(t *testing.T) {
	extractor := &fakeExtractor{fail: map[string]bool{"b": true}}
	var progress []Progress
	sess := &Session{
		Mail:       threeMessages(),
		Extractor:  extractor,
		OnProgress: func(p Progress) { progress = append(progress, p) },
	}

	result, err := newTestService(nil).Run(context.Background(), sess)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "Acme", result.Records[0].Company)
	assert.Equal(t, "Initech", result.Records[1].Company)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, extractor.calls)
	assert.Len(t, progress, 3)
	assert.Equal(t, Progress{Processed: 3, Total: 3}, progress[2])
}

func TestRunIgnoresFilteredSenders(t *testing.T) {
	extractor := &fakeExtractor{}
	sess := &Session{Mail: threeMessages(), Extractor: extractor}

	result, err := newTestService(prefixFilter("no-reply@")).Run(context.Background(), sess)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Ignored)
	assert.Equal(t, 2, extractor.calls)
	assert.Equal(t, Summary{Total: 2, Interviews: 1, Rejections: 1}, result.Summary)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := &Session{Mail: threeMessages(), Extractor: &fakeExtractor{}}

	result, err := newTestService(nil).Run(ctx, sess)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunUndecodableBodyStillExtracts(t *testing.T) {
	mail := threeMessages()
	mail.messages["a"].Payload.Data = "!!not base64!!"

	result, err := newTestService(nil).Run(context.Background(), &Session{Mail: mail, Extractor: &fakeExtractor{}})
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, StatusInterview, result.Records[0].Status)
}

// slowMail blocks GetMessage for the listed IDs until the call context ends
type slowMail struct {
	*fakeMail
	slow map[string]bool
}

func (s *slowMail) GetMessage(ctx context.Context, id string) (*Message, error) {
	if s.slow[id] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.fakeMail.GetMessage(ctx, id)
}

// slowExtractor blocks for the listed IDs until the call context ends
type slowExtractor struct {
	fakeExtractor
	slow map[string]bool
}

func (s *slowExtractor) Extract(ctx context.Context, email *Email) (*ApplicationRecord, error) {
	if s.slow[email.ID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.fakeExtractor.Extract(ctx, email)
}

type bodyRecorder struct {
	bodies []string
}

func (b *bodyRecorder) Extract(_ context.Context, email *Email) (*ApplicationRecord, error) {
	b.bodies = append(b.bodies, email.Body)
	return &ApplicationRecord{Company: CompanyFromSender(email.From), Status: StatusApplied}, nil
}

func newTimeoutService(callTimeout time.Duration) *TrackerService {
	logger := zap.NewNop()
	return NewTrackerService("q", nil, utils.NewTextProcessor(logger), logger, callTimeout, 0)
}

func TestRunExtractionTimeoutSkipsMessage(t *testing.T) {
	extractor := &slowExtractor{slow: map[string]bool{"b": true}}
	sess := &Session{Mail: threeMessages(), Extractor: extractor}

	result, err := newTimeoutService(20*time.Millisecond).Run(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Acme", result.Records[0].Company)
	assert.Equal(t, "Initech", result.Records[1].Company)
}

func TestRunFetchTimeoutAbortsRun(t *testing.T) {
	mail := &slowMail{fakeMail: threeMessages(), slow: map[string]bool{"b": true}}
	var progress []Progress
	sess := &Session{
		Mail:       mail,
		Extractor:  &fakeExtractor{},
		OnProgress: func(p Progress) { progress = append(progress, p) },
	}

	result, err := newTimeoutService(20*time.Millisecond).Run(context.Background(), sess)
	assert.Nil(t, result)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "b", fetchErr.MessageID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Progress{}, progress[len(progress)-1])
}

func TestRunHandsExtractorFullLatin1Body(t *testing.T) {
	msg := newMessage("a", `"Acme" <jobs@acme.com>`, "Your application", "")
	msg.Payload.Data = base64.URLEncoding.EncodeToString([]byte(strings.Repeat("caf\xe9 ", 1000)))
	mail := &fakeMail{ids: []string{"a"}, messages: map[string]*Message{"a": msg}}
	recorder := &bodyRecorder{}

	_, err := newTestService(nil).Run(context.Background(), &Session{Mail: mail, Extractor: recorder})
	require.NoError(t, err)

	require.Len(t, recorder.bodies, 1)
	body := recorder.bodies[0]
	assert.Contains(t, body, "café")
	assert.Equal(t, MaxBodyChars+utf8.RuneCountInString(utils.TruncationMarker), utf8.RuneCountInString(body))
}
