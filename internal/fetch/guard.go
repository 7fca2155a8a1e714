package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a URL resolves to a loopback, private,
// link-local or otherwise non-public address
var ErrBlockedAddress = errors.New("destination address is not public")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598)
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Option configures a Client
type Option func(*Client)

// AllowPrivateNetworks lets the client reach loopback and private addresses.
// Use it only where the URL comes from the machine's own operator.
func AllowPrivateNetworks() Option {
	return func(c *Client) { c.allowPrivate = true }
}

// isPublic reports whether addr may be dialed by a client serving other users
func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// refuseNonPublic runs after name resolution, so every dial of a redirect
// or a re-resolved host is checked against the address actually used
func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	if !isPublic(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

func newTransport(allowPrivate bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if allowPrivate {
		return transport
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseNonPublic,
	}
	transport.DialContext = dialer.DialContext
	// A proxy would be dialed instead of the target and hide it from the check
	transport.Proxy = nil
	return transport
}
