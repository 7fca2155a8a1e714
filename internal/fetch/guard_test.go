package fetch

import (
	"net/http"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublic(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:4700:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"100.64.0.1", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
		{"::ffff:8.8.8.8", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublic(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestRefuseNonPublic(t *testing.T) {
	assert.NoError(t, refuseNonPublic("tcp4", "93.184.216.34:443", nil))
	assert.ErrorIs(t, refuseNonPublic("tcp4", "169.254.169.254:80", nil), ErrBlockedAddress)
	assert.ErrorIs(t, refuseNonPublic("tcp6", "[::1]:8080", nil), ErrBlockedAddress)
	assert.Error(t, refuseNonPublic("tcp", "no-port", nil))
}

func TestGet_RefusesLoopback(t *testing.T) {
	srv := newPageServer(t, http.StatusOK, postingHTML)

	_, err := NewClient(0).Get(t.Context(), srv.URL)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "destination not allowed", fetchErr.Message)
	assert.ErrorIs(t, err, ErrBlockedAddress)

	_, err = NewClient(0).JobPosting(t.Context(), "http://localhost:1/jobs/1")
	assert.ErrorIs(t, err, ErrBlockedAddress)
}

