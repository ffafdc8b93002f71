package service

import (
	"fmt"
	"net/http"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

const (
	TransportStd     = "std"
	TransportBrowser = "browser"
)

// browserTransport adapts a tls-client to the net/http request types
type browserTransport struct {
	inner tls_client.HttpClient
}

func (w *browserTransport) Do(req *http.Request) (*http.Response, error) {
	fReq := &fhttp.Request{
		Method:        req.Method,
		URL:           req.URL,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        make(fhttp.Header),
		Body:          req.Body,
		ContentLength: req.ContentLength,
		Host:          req.Host,
	}
	for k, v := range req.Header {
		fReq.Header[k] = v
	}
	fReq = fReq.WithContext(req.Context())

	resp, err := w.inner.Do(fReq)
	if err != nil {
		return nil, err
	}

	netResp := &http.Response{
		Status:           resp.Status,
		StatusCode:       resp.StatusCode,
		Proto:            resp.Proto,
		ProtoMajor:       resp.ProtoMajor,
		ProtoMinor:       resp.ProtoMinor,
		ContentLength:    resp.ContentLength,
		Body:             resp.Body,
		Header:           make(http.Header),
		Uncompressed:     resp.Uncompressed,
		TransferEncoding: resp.TransferEncoding,
		Request:          req,
	}
	for k, v := range resp.Header {
		netResp.Header[k] = v
	}
	return netResp, nil
}

// NewBrowserTransport returns a client with a browser TLS fingerprint
func NewBrowserTransport(timeout int) (HTTPDoer, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.DefaultClientProfile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
		// 0 leaves requests unbounded; the library default is 30s
		tls_client.WithTimeoutSeconds(timeout),
	}

	c, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}
	return &browserTransport{inner: c}, nil
}

// NewTransport picks the HTTP transport by name
func NewTransport(kind string, timeout int) (HTTPDoer, error) {
	if kind == TransportBrowser {
		return NewBrowserTransport(timeout)
	}
	return NewStdClient(timeout), nil
}
