package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)
	// header.payload.signature with at least 10 characters per segment
	jwtPattern = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)
)

// newRedactAttr returns a ReplaceAttr hook that masks credential fields and
// raw tokens. Identity provider inputs carry passwords, refresh tokens and
// the SECRET_HASH, so those names are covered too.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("authorization"),
		masq.WithFieldName("password"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("refreshToken"),
		masq.WithFieldName("client_secret"),
		masq.WithFieldName("SECRET_HASH"),
		masq.WithFieldName("REFRESH_TOKEN"),
		masq.WithFieldName("PASSWORD"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
	)
}
