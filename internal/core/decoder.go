package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/mikey/applytrack/internal/utils"
)

// MaxBodyChars is the longest body, in characters, handed to an extractor
const MaxBodyChars = 4000

const plainTextType = "text/plain"

// DecodeBody returns the plain-text body of a payload as UTF-8, truncated to MaxBodyChars.
// Multipart payloads use their first text/plain part; if there is none the body is empty.
// Malformed base64 yields an empty body together with the decode error.
func DecodeBody(payload *MessagePart) (string, error) {
	if payload == nil {
		return "", nil
	}

	part := payload
	if len(payload.Parts) > 0 {
		part = nil
		for _, p := range payload.Parts {
			if p != nil && p.MimeType == plainTextType {
				part = p
				break
			}
		}
	}

	if part == nil || part.Data == "" {
		return "", nil
	}

	raw, err := decodeBase64URL(part.Data)
	if err != nil {
		return "", err
	}

	return utils.TruncateRunes(toUTF8(raw, part.Charset), MaxBodyChars), nil
}

// decodeBase64URL accepts the URL-safe alphabet with or without padding
func decodeBase64URL(data string) ([]byte, error) {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(strings.TrimSpace(data))
	decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(std, "="))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return decoded, nil
}

// toUTF8 converts raw from the declared charset. Undeclared text that is not valid UTF-8 is read as Latin-1.
func toUTF8(raw []byte, charset string) string {
	if charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil {
			if out, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(out)
			}
		}
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(out)
}
