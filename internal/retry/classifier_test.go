package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpErr(status int) error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
		Err:      errors.New("upload failed"),
	}
}

func TestTransferErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewTransferErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"wrapped cancel", fmt.Errorf("push: %w", context.Canceled), false},

		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pg serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"pg syntax error", &pgconn.PgError{Code: "42601"}, false},

		{"s3 503", httpErr(http.StatusServiceUnavailable), true},
		{"s3 429", httpErr(http.StatusTooManyRequests), true},
		{"s3 403", httpErr(http.StatusForbidden), false},
		{"s3 slow down", &smithy.GenericAPIError{Code: "SlowDown"}, true},
		{"s3 server fault", &smithy.GenericAPIError{Code: "Weird", Fault: smithy.FaultServer}, true},
		{"s3 no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket", Fault: smithy.FaultClient}, false},

		{"azure 500", &azcore.ResponseError{StatusCode: http.StatusInternalServerError}, true},
		{"azure 404", &azcore.ResponseError{StatusCode: http.StatusNotFound}, false},

		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"connection reset", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"dns timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"message only", errors.New("write: broken pipe"), true},
		{"plain error", errors.New("permission denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTransient, classifier.IsTransient(tt.err))
		})
	}
}

func TestTransferErrorClassifier_WrappedErrors(t *testing.T) {
	classifier := NewTransferErrorClassifier()

	err := fmt.Errorf("upload manifest.json: %w", httpErr(http.StatusBadGateway))
	assert.True(t, classifier.IsTransient(err))

	err = fmt.Errorf("insert entry: %w", &pgconn.PgError{Code: "08001"})
	assert.True(t, classifier.IsTransient(err))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"", 0, false},
		{"7", 7 * time.Second, true},
		{"-1", 0, false},
		{"soon", 0, false},
		{"Sun, 01 Jun 2025 10:00:30 GMT", 30 * time.Second, true},
		{"Sun, 01 Jun 2025 09:00:00 GMT", 0, true},
	}
	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.value, now)
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestRetryAfter_Azure(t *testing.T) {
	err := &azcore.ResponseError{
		StatusCode:  http.StatusServiceUnavailable,
		RawResponse: &http.Response{Header: http.Header{"Retry-After": []string{"3"}}},
	}
	d, ok := RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = RetryAfter(errors.New("plain"))
	assert.False(t, ok)
}
