// Package apperr maps the service's failure modes onto go-errors envelopes so
// the HTTP layer can pick a status code and a public message without knowing
// which component failed.
package apperr

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation   = "VALIDATION_FAILED"
	TextCodeInvalidToken = "INVALID_TOKEN"
	TextCodeDownstream   = "DOWNSTREAM_FAILED"
	TextCodeInternal     = "INTERNAL_ERROR"
)

const (
	MessageInternal     = "Internal Server Error"
	MessageInvalidToken = "invalid or expired confirmation link"
	MessageValidation   = "invalid scan request"
)

// FieldError names one rejected input field.
type FieldError = goerrors.FieldError

// Validation reports a malformed request body, address or path parameter.
func Validation(fields ...FieldError) error {
	msg := MessageValidation
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	return goerrors.NewValidation(msg, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeValidation).
		WithSeverity(goerrors.SeverityError)
}

// InvalidToken covers bad signatures, malformed tokens, expired tokens and
// replayed tokens alike. The cause is kept for logs only.
func InvalidToken(cause error) error {
	if cause == nil {
		cause = errors.New(MessageInvalidToken)
	}
	return goerrors.Wrap(cause, goerrors.CategoryAuth, MessageInvalidToken).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeInvalidToken)
}

// Downstream reports a failed call to the webhook or the orchestrator status
// API. status is the HTTP code the caller should see; zero means 502.
func Downstream(cause error, message string, status int) error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	err := goerrors.Wrap(cause, goerrors.CategoryOperation, message).
		WithCode(status).
		WithTextCode(TextCodeDownstream)
	if status != http.StatusBadGateway {
		err.WithMetadata(map[string]any{"upstream_status": status})
	}
	return err
}

// Internal reports anything the caller cannot act on.
func Internal(cause error, message string) error {
	if cause == nil {
		return goerrors.New(message, goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(TextCodeInternal)
	}
	return goerrors.Wrap(cause, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInternal)
}

// Resolve returns the rich envelope carried by err, treating anything that
// was never classified as an internal error.
func Resolve(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich != nil {
		if rich.Code == 0 {
			rich.WithCode(http.StatusInternalServerError)
		}
		return rich
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, MessageInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInternal)
}

// PublicMessage is the only text a caller ever sees for err. Server-side
// failures always collapse to MessageInternal.
func PublicMessage(rich *goerrors.Error) string {
	if rich == nil || rich.Code >= http.StatusInternalServerError {
		return MessageInternal
	}
	switch rich.TextCode {
	case TextCodeInvalidToken:
		return MessageInvalidToken
	case TextCodeValidation:
		return rich.Message
	case TextCodeDownstream:
		return "upstream request failed"
	}
	return http.StatusText(rich.Code)
}

// Is reports whether err carries the given text code.
func Is(err error, textCode string) bool {
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich != nil && rich.TextCode == textCode
}
