package api

import (
	"io"
	"net/url"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data []byte
	pos  int
	err  error // returned once data is exhausted, instead of io.EOF
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	return nil
}

// mockHTTPClient implements tls_client.HttpClient for testing
type mockHTTPClient struct {
	doFunc func(req *fhttp.Request) (*fhttp.Response, error)

	mu       sync.Mutex
	requests []*fhttp.Request
	bodies   []string
}

func (m *mockHTTPClient) GetCookies(u *url.URL) []*fhttp.Cookie          { return nil }
func (m *mockHTTPClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}
func (m *mockHTTPClient) SetCookieJar(jar fhttp.CookieJar)               {}
func (m *mockHTTPClient) GetCookieJar() fhttp.CookieJar                  { return nil }
func (m *mockHTTPClient) SetProxy(proxyUrl string) error                 { return nil }
func (m *mockHTTPClient) GetProxy() string                               { return "" }
func (m *mockHTTPClient) SetFollowRedirect(followRedirect bool)          {}
func (m *mockHTTPClient) GetFollowRedirect() bool                        { return false }
func (m *mockHTTPClient) CloseIdleConnections()                          {}
func (m *mockHTTPClient) Get(url string) (*fhttp.Response, error)        { return nil, nil }
func (m *mockHTTPClient) Head(url string) (*fhttp.Response, error)       { return nil, nil }
func (m *mockHTTPClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return nil, nil
}
func (m *mockHTTPClient) GetBandwidthTracker() bandwidth.BandwidthTracker { return nil }

func (m *mockHTTPClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return nil, nil
}

func (m *mockHTTPClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockHTTPClient) lastRequest() (*fhttp.Request, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil, ""
	}
	return m.requests[len(m.requests)-1], m.bodies[len(m.bodies)-1]
}

// newResponse builds a response with the given status, content type and body
func newResponse(status int, contentType, body string) *fhttp.Response {
	header := make(fhttp.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &fhttp.Response{
		StatusCode: status,
		Header:     header,
		Body:       NewMockResponseBody([]byte(body)),
	}
}

// respondWith returns a mock client that always answers with the given response
func respondWith(status int, contentType, body string) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(req *fhttp.Request) (*fhttp.Response, error) {
			return newResponse(status, contentType, body), nil
		},
	}
}

// blockUntilCancelled returns a mock client whose requests only end when
// their context does
func blockUntilCancelled() *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(req *fhttp.Request) (*fhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
}

// sseBody joins events into a server-sent event stream
func sseBody(events ...string) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString("data: ")
		sb.WriteString(e)
		sb.WriteString("\r\n\r\n")
	}
	return sb.String()
}
