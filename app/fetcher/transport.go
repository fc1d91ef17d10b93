package fetcher

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"sync"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// browserTransport dials https connections with a Firefox TLS fingerprint
// and routes the request to h1 or h2 depending on the negotiated protocol.
type browserTransport struct {
	dial dialFunc
	h1   *http.Transport
	h2   *http2.Transport
}

func newBrowserTransport(dial dialFunc) *browserTransport {
	return &browserTransport{
		dial: dial,
		h1: &http.Transport{
			Proxy:       http.ProxyFromEnvironment,
			DialContext: dial,
		},
		h2: &http2.Transport{},
	}
}

// RoundTrip implements http.RoundTripper.
func (bt *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return bt.h1.RoundTrip(req)
	}

	addr := req.URL.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "443")
	}

	conn, alpn, err := bt.dialTLS(req.Context(), addr)
	if err != nil {
		return nil, err
	}

	if alpn == http2.NextProtoTLS {
		cc, err := bt.h2.NewClientConn(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		resp, err := cc.RoundTrip(req)
		if err != nil {
			_ = cc.Close()
			return nil, err
		}
		resp.Body = &connBody{ReadCloser: resp.Body, release: cc.Close}
		return resp, nil
	}

	// one-shot transport over the already established connection,
	// the connection is closed along with the response body
	h1 := &http.Transport{
		DialTLSContext:    func(context.Context, string, string) (net.Conn, error) { return conn, nil },
		DisableKeepAlives: true,
	}
	resp, err := h1.RoundTrip(req)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	resp.Body = &connBody{ReadCloser: resp.Body, release: func() error {
		h1.CloseIdleConnections()
		return nil
	}}
	return resp, nil
}

// connBody releases the connection of a single request once the body is closed.
type connBody struct {
	io.ReadCloser
	release func() error
	once    sync.Once
}

// Close closes the body and releases the connection.
func (b *connBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		if rerr := b.release(); rerr != nil && err == nil {
			err = rerr
		}
	})
	return err
}

func (bt *browserTransport) dialTLS(ctx context.Context, addr string) (net.Conn, string, error) {
	conn, err := bt.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, "", err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloFirefox_120)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, "", err
	}

	return &utlsConn{UConn: tlsConn}, tlsConn.ConnectionState().NegotiatedProtocol, nil
}

// utlsConn exposes the connection state in the form net/http2 expects.
type utlsConn struct {
	*utls.UConn
}

// ConnectionState returns the state of the TLS connection.
func (c *utlsConn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                    cs.Version,
		HandshakeComplete:          cs.HandshakeComplete,
		CipherSuite:                cs.CipherSuite,
		NegotiatedProtocol:         cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual: cs.NegotiatedProtocolIsMutual,
		ServerName:                 cs.ServerName,
		PeerCertificates:           cs.PeerCertificates,
		VerifiedChains:             cs.VerifiedChains,
	}
}
