package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrPrivateAddress is returned when the host resolves only to private addresses.
var ErrPrivateAddress = errors.New("connection to private address is not allowed")

var privateBlocks = func() []*net.IPNet {
	var res []*net.IPNet
	for _, cidr := range []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"100.64.0.0/10",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	} {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("parse cidr %q: %v", cidr, err))
		}
		res = append(res, block)
	}
	return res
}()

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// guardedDialContext resolves the host and dials the first public address
// directly, so that the address can't be swapped between the check and the dial.
func guardedDialContext(dialer *net.Dialer) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
		if err != nil {
			return nil, err
		}

		for _, ip := range ips {
			if !isPrivateIP(ip) {
				return dialer.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
			}
		}

		return nil, fmt.Errorf("dial %s: %w", host, ErrPrivateAddress)
	}
}
