package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

// ErrTransport marks failures to communicate with the sales agent:
// network errors, timeouts, unexpected HTTP statuses and undecodable responses.
var ErrTransport = cr.New("agent transport failure")

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}

// Transport wraps err with msg and marks it as a transport failure.
func Transport(err error, msg string) error {
	return Mark(Wrap(err, msg), ErrTransport)
}

func IsTransport(err error) bool {
	return err != nil && cr.Is(err, ErrTransport)
}

// ExtractStackLines renders err with its stack trace, truncated to maxLines.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
