package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/jackc/pgx/v5/pgconn"
)

// Transient PostgreSQL error classes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientPgClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

// Transient PostgreSQL codes outside the classes above.
var transientPgCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// Object-store error codes that are worth another attempt.
var transientAPICodes = map[string]struct{}{
	"SlowDown":             {},
	"RequestTimeout":       {},
	"RequestTimeTooSkewed": {},
	"InternalError":        {},
	"ServiceUnavailable":   {},
	"ServerBusy":           {},
	"OperationTimedOut":    {},
}

// Lower-cased message fragments of transient failures that surface without a typed error.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"tls handshake timeout",
}

// TransferErrorClassifier decides which push failures are retried.
//
// It recognises PostgreSQL connection, resource and shutdown errors from the
// catalog backend, HTTP 408/429/5xx responses from S3 and Azure Blob Storage,
// and network-level failures. Cancellation is never transient.
type TransferErrorClassifier struct{}

// NewTransferErrorClassifier creates a classifier for packaging backends.
func NewTransferErrorClassifier() *TransferErrorClassifier {
	return &TransferErrorClassifier{}
}

// IsTransient reports whether err is temporary and the operation may be retried.
func (c *TransferErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}

	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return isTransientStatus(azErr.StatusCode)
	}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		if isTransientStatus(statusErr.HTTPStatusCode()) {
			return true
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := transientAPICodes[apiErr.ErrorCode()]; ok {
			return true
		}
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	if isNetworkError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTransientPgCode(code string) bool {
	for _, class := range transientPgClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	_, ok := transientPgCodes[code]
	return ok
}

func isTransientStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}
	return false
}

// RetryAfter returns the delay an S3 or Azure response asked for in its
// Retry-After header, given either as seconds or as an HTTP date.
func RetryAfter(err error) (time.Duration, bool) {
	var resp *http.Response

	var azErr *azcore.ResponseError
	var smithyErr *smithyhttp.ResponseError
	switch {
	case errors.As(err, &azErr):
		resp = azErr.RawResponse
	case errors.As(err, &smithyErr) && smithyErr.Response != nil:
		resp = smithyErr.Response.Response
	}
	if resp == nil {
		return 0, false
	}
	return parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
}

func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := when.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
