package ignorelist

import (
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// Checker decides whether a sender belongs to an ignored domain.
// A domain also covers its subdomains.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new ignore list checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender ignore list", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsIgnored checks whether the From header's address is in an ignored domain
func (c *Checker) IsIgnored(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	if domain == "" {
		return false
	}

	for _, ignored := range c.domains {
		if domain == ignored || strings.HasSuffix(domain, "."+ignored) {
			if c.logger != nil {
				c.logger.Debug("Sender domain is ignored",
					zap.String("domain", domain),
					zap.String("from", from))
			}
			return true
		}
	}

	return false
}

func senderDomain(from string) string {
	address := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(from); err == nil {
		address = parsed.Address
	}

	at := strings.LastIndex(address, "@")
	if at == -1 {
		return ""
	}
	return strings.ToLower(strings.Trim(address[at+1:], "> "))
}
