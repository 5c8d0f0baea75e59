package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch failures (transport errors, timeouts, non-2xx responses)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML or structured-data parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeFieldNotFound represents a product field no extraction strategy could resolve
	ErrorTypeFieldNotFound ErrorType = "field_not_found"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeExport represents export (CSV) errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a crawler-specific error
type CrawlerError struct {
	Type       ErrorType
	Target     string
	Message    string
	StatusCode int
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable.
// The crawl core never retries; this is advisory for fetch collaborators.
func (e *CrawlerError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return e.StatusCode == 0 || e.StatusCode >= 500
	default:
		return false
	}
}

// New creates a new CrawlerError
func New(errType ErrorType, target, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new network error for a failed fetch of target
func NewFetch(target, message string, err error) *CrawlerError {
	return New(ErrorTypeNetwork, target, message, err)
}

// NewHTTPStatus creates a network error for a non-2xx response
func NewHTTPStatus(target string, statusCode int) *CrawlerError {
	e := New(ErrorTypeNetwork, target, fmt.Sprintf("unexpected status code: %d", statusCode), nil)
	e.StatusCode = statusCode
	return e
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *CrawlerError {
	return New(ErrorTypeParsing, target, message, err)
}

// NewFieldNotFound creates a new field-not-found error
func NewFieldNotFound(target, field string) *CrawlerError {
	return New(ErrorTypeFieldNotFound, target, fmt.Sprintf("no strategy produced %s", field), nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, retryAfter string) *CrawlerError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, target, message, nil)
}

// NewCache creates a new cache error
func NewCache(target, message string, err error) *CrawlerError {
	return New(ErrorTypeCache, target, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(target, message string, err error) *CrawlerError {
	return New(ErrorTypePublisher, target, message, err)
}

// NewExport creates a new export error
func NewExport(target, message string, err error) *CrawlerError {
	return New(ErrorTypeExport, target, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err wraps a CrawlerError of the given type
func IsType(err error, errType ErrorType) bool {
	var ce *CrawlerError
	if stderrors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}

// Retryable reports whether err wraps a retryable CrawlerError
func Retryable(err error) bool {
	var ce *CrawlerError
	return stderrors.As(err, &ce) && ce.IsRetryable()
}
