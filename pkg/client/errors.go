package client

import (
	"errors"
	"fmt"
)

// ErrorClass tags an error for metrics and logs.
type ErrorClass string

const (
	// ErrorClassTransport represents network failures and unexpected HTTP statuses.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassAuth represents OAuth rejections.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassDecode represents bodies that are not valid JSON or XML.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassService represents stat=fail responses.
	ErrorClassService ErrorClass = "service"
)

// TransportError is a network failure or a non-2xx HTTP status.
type TransportError struct {
	Method     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("flickr transport error (%s, status %d): %v", e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("flickr transport error (%s): %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError is an OAuth handshake or signature failure.
type AuthError struct {
	// Problem is the oauth_problem value reported by Flickr, if any
	// (e.g., "token_rejected", "signature_invalid").
	Problem string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Problem != "" && e.Err != nil:
		return fmt.Sprintf("flickr auth error: %s: %v", e.Problem, e.Err)
	case e.Problem != "":
		return "flickr auth error: " + e.Problem
	case e.Err != nil:
		return fmt.Sprintf("flickr auth error: %v", e.Err)
	default:
		return "flickr auth error"
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// maxBodySnippet bounds how much of an undecodable body goes into Error().
const maxBodySnippet = 256

// DecodeError carries a body that could not be parsed.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	body := e.Body
	suffix := ""
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
		suffix = "..."
	}
	return fmt.Sprintf("flickr decode error: %v (body %q%s)", e.Err, body, suffix)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ServiceError is a well-formed failure response from Flickr.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("flickr error %d: %s", e.Code, e.Message)
}

// Classify returns the class of the first typed error in err's chain, or
// "" for untyped errors.
func Classify(err error) ErrorClass {
	var (
		transportErr *TransportError
		authErr      *AuthError
		decodeErr    *DecodeError
		serviceErr   *ServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr):
		return ErrorClassAuth
	case errors.As(err, &serviceErr):
		return ErrorClassService
	case errors.As(err, &decodeErr):
		return ErrorClassDecode
	case errors.As(err, &transportErr):
		return ErrorClassTransport
	default:
		return ""
	}
}

// ServiceCode returns the Flickr error code if err is a ServiceError.
func ServiceCode(err error) (int, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code, true
	}
	return 0, false
}
