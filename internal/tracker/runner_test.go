package tracker

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ports"
	"github.com/mikey/applytrack/internal/utils"
)

type stubMail struct {
	ids     []string
	listErr error
	block   chan struct{}
}

func (m *stubMail) ListMessageIDs(ctx context.Context, _ string) ([]string, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.ids, m.listErr
}

func (m *stubMail) GetMessage(_ context.Context, id string) (*core.Message, error) {
	return &core.Message{
		ID: id,
		Headers: []core.Header{
			{Name: "From", Value: `"Acme" <jobs@acme.com>`},
			{Name: "Subject", Value: "Interview for Software Engineer"},
		},
		Payload: &core.MessagePart{MimeType: "text/plain", Data: base64.URLEncoding.EncodeToString([]byte("See you soon"))},
	}, nil
}

type stubSessions struct {
	mail     *stubMail
	err      error
	tokens   []string
	cleanups int
}

func (s *stubSessions) NewSession(_ context.Context, token string, onProgress func(core.Progress)) (*core.Session, func(), error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, nil, s.err
	}
	return &core.Session{
		Mail:       s.mail,
		Extractor:  core.NewRuleExtractor(time.UTC),
		OnProgress: onProgress,
	}, func() { s.cleanups++ }, nil
}

type recordingPresenter struct {
	results []*core.RunResult
}

func (p *recordingPresenter) Present(_ context.Context, result *core.RunResult) error {
	p.results = append(p.results, result)
	return nil
}

func newRunner(sessions SessionBuilder, presenter ports.Presenter) *Runner {
	logger := zap.NewNop()
	service := core.NewTrackerService("q", nil, utils.NewTextProcessor(logger), logger, time.Second, 0)
	return NewRunner(service, sessions, presenter, logger)
}

func TestRunStoresAndPresentsResult(t *testing.T) {
	sessions := &stubSessions{mail: &stubMail{ids: []string{"a", "b"}}}
	presenter := &recordingPresenter{}
	runner := newRunner(sessions, presenter)

	result, err := runner.Run(context.Background(), "tok")
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, "Software Engineer", result.Records[0].Role)
	assert.Same(t, result, runner.Latest())
	assert.Equal(t, []*core.RunResult{result}, presenter.results)
	assert.Equal(t, []string{"tok"}, sessions.tokens)
	assert.Equal(t, 1, sessions.cleanups)

	status := runner.Status()
	assert.False(t, status.Running)
	assert.Equal(t, core.Progress{Processed: 2, Total: 2}, status.Progress)
	assert.Equal(t, 100, status.Percent)
	assert.Empty(t, status.LastErr)
}

func TestRunNoMessagesGivesEmptyResult(t *testing.T) {
	presenter := &recordingPresenter{}
	runner := newRunner(&stubSessions{mail: &stubMail{}}, presenter)

	result, err := runner.Run(context.Background(), "tok")
	assert.ErrorIs(t, err, core.ErrNoMessages)
	require.NotNil(t, result)
	assert.Empty(t, result.Records)
	assert.Equal(t, core.Summary{}, result.Summary)
	assert.Len(t, presenter.results, 1)
}

func TestFailedRunKeepsPreviousResult(t *testing.T) {
	mail := &stubMail{ids: []string{"a"}}
	presenter := &recordingPresenter{}
	runner := newRunner(&stubSessions{mail: mail}, presenter)

	first, err := runner.Run(context.Background(), "tok")
	require.NoError(t, err)

	mail.listErr = &core.AuthError{Err: errors.New("401")}
	_, err = runner.Run(context.Background(), "expired")

	var authErr *core.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Same(t, first, runner.Latest())
	assert.Len(t, presenter.results, 1)

	status := runner.Status()
	assert.Equal(t, core.Progress{}, status.Progress)
	assert.NotEmpty(t, status.LastErr)
}

func TestRunSessionErrors(t *testing.T) {
	runner := newRunner(&stubSessions{err: &core.AuthError{Err: errors.New("no access token")}}, nil)

	_, err := runner.Run(context.Background(), "")

	var authErr *core.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Nil(t, runner.Latest())
}

func TestOnlyOneRunAtATime(t *testing.T) {
	mail := &stubMail{ids: []string{"a"}, block: make(chan struct{})}
	runner := newRunner(&stubSessions{mail: mail}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), "tok")
		done <- err
	}()

	require.Eventually(t, func() bool { return runner.Status().Running }, time.Second, 5*time.Millisecond)

	_, err := runner.Run(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(mail.block)
	assert.NoError(t, <-done)
}
