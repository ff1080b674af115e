package importer

import (
	"errors"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "nil error", err: nil, expect: false},
		{name: "connection refused", err: errors.New("dial tcp: connect: connection refused"), expect: true},
		{name: "ECONNREFUSED uppercase", err: errors.New("dial tcp: ECONNREFUSED"), expect: true},
		{name: "timeout", err: errors.New("i/o timeout"), expect: true},
		{name: "no such host", err: errors.New("lookup ftp.example.com: no such host enotfound"), expect: true},
		{name: "ftp specific error", err: errors.New("ftp: 550 file not found"), expect: true},
		{name: "network unreachable", err: errors.New("network is unreachable"), expect: true},
		{name: "socket closed", err: errors.New("use of closed socket"), expect: true},
		{name: "parse error is not retryable", err: errors.New("unexpected end of JSON input"), expect: false},
		{name: "missing fields is not retryable", err: errMissingPathFields, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.expect {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}
