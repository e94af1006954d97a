package utils

import (
	"errors"
	"net/url"
	"strings"
)

// RedactURL returns scheme://host of u. Path, query and user info are dropped because
// node providers put access keys there.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}

// RedactEndpoint is RedactURL for raw strings, including unexpanded templates.
func RedactEndpoint(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	if at := strings.LastIndex(host, "@"); at >= 0 {
		host = host[at+1:]
	}
	if i := strings.IndexAny(host, "?#"); i >= 0 {
		host = host[:i]
	}
	return scheme + "://" + host
}

// redactedError keeps the cause of a transport error while hiding the URL it was sent to.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

// RedactError rewrites the URL of any *url.Error in err's chain down to scheme://host.
// errors.Is still matches the transport cause (e.g. context.DeadlineExceeded).
func RedactError(err error) error {
	var uerr *url.Error
	if err == nil || !errors.As(err, &uerr) {
		return err
	}
	redacted := "[redacted]"
	if u, perr := url.Parse(uerr.URL); perr == nil && u.Host != "" {
		redacted = RedactURL(u)
	}
	msg := strings.ReplaceAll(err.Error(), uerr.URL, redacted)
	return &redactedError{msg: msg, cause: uerr.Err}
}
