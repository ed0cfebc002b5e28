package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mikey/applytrack/internal/core"
)

const defaultUser = "me"

// Client implements core.MailProvider against the Gmail REST API
type Client struct {
	service *gmailapi.Service
	user    string
	logger  *zap.Logger
}

// NewClient creates a Gmail client that authenticates with a bearer access token.
// An empty endpoint uses the public API.
func NewClient(ctx context.Context, accessToken, endpoint string, logger *zap.Logger) (*Client, error) {
	if accessToken == "" {
		return nil, &core.AuthError{Err: errors.New("no access token")}
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		service: service,
		user:    defaultUser,
		logger:  logger,
	}, nil
}

// ListMessageIDs returns the IDs on the first result page for query
func (c *Client) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	resp, err := c.service.Users.Messages.List(c.user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, classify(err, &core.FetchError{Op: "list", Err: err})
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}

	c.logger.Debug("Listed messages",
		zap.String("query", query),
		zap.Int("count", len(ids)),
		zap.Bool("more_pages", resp.NextPageToken != ""))

	return ids, nil
}

// GetMessage fetches one message in full format
func (c *Client) GetMessage(ctx context.Context, id string) (*core.Message, error) {
	msg, err := c.service.Users.Messages.Get(c.user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, classify(err, &core.FetchError{Op: "get", MessageID: id, Err: err})
	}

	result := &core.Message{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			result.Headers = append(result.Headers, core.Header{Name: h.Name, Value: h.Value})
		}
		result.Payload = convertPart(msg.Payload)
	}
	return result, nil
}

func convertPart(part *gmailapi.MessagePart) *core.MessagePart {
	if part == nil {
		return nil
	}

	converted := &core.MessagePart{MimeType: part.MimeType, Charset: partCharset(part)}
	if part.Body != nil {
		converted.Data = part.Body.Data
	}
	for _, child := range part.Parts {
		converted.Parts = append(converted.Parts, convertPart(child))
	}
	return converted
}

// partCharset returns the charset parameter of the part's Content-Type header, if any
func partCharset(part *gmailapi.MessagePart) string {
	for _, h := range part.Headers {
		if !strings.EqualFold(h.Name, "Content-Type") {
			continue
		}
		var header mail.Header
		header.Set("Content-Type", h.Value)
		_, params, err := header.ContentType()
		if err != nil {
			return ""
		}
		return params["charset"]
	}
	return ""
}

// rateLimitReasons are 403 reasons that mean quota exhaustion rather than a refused grant
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":       true,
	"userRateLimitExceeded":   true,
	"dailyLimitExceeded":      true,
	"quotaExceeded":           true,
	"concurrentLimitExceeded": true,
}

// classify maps a rejected token to an AuthError and everything else to fallback
func classify(err error, fallback *core.FetchError) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fallback
	}

	switch apiErr.Code {
	case http.StatusUnauthorized:
		return &core.AuthError{Err: err}
	case http.StatusForbidden:
		for _, item := range apiErr.Errors {
			if rateLimitReasons[item.Reason] {
				return fallback
			}
		}
		return &core.AuthError{Err: err}
	default:
		return fallback
	}
}
