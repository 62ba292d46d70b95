package noop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RassulYunussov/ec3client/common"
)

const DefaultMaxResponseSize = 10 << 20

// noOpHttpClient sends requests over net/http without any resiliency policy
type noOpHttpClient struct {
	client          *http.Client
	maxResponseSize int64
}

// CreateNoOpHttpClient reads at most maxResponseSize bytes per response,
// zero or less means DefaultMaxResponseSize
func CreateNoOpHttpClient(timeout time.Duration, maxResponseSize int64) common.Sender {
	return CreateNoOpHttpClientWith(&http.Client{Timeout: timeout}, maxResponseSize)
}

// CreateNoOpHttpClientWith wraps a caller supplied *http.Client
func CreateNoOpHttpClientWith(client *http.Client, maxResponseSize int64) common.Sender {
	if maxResponseSize <= 0 {
		maxResponseSize = DefaultMaxResponseSize
	}
	return &noOpHttpClient{client: client, maxResponseSize: maxResponseSize}
}

func (c *noOpHttpClient) Send(ctx context.Context, method common.Method, url string, headers http.Header, body []byte) (*common.Response, error) {
	var reader io.Reader
	if body != nil && method.AllowsBody() {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(ctx, method.String(), url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		r.Header[k] = append([]string(nil), v...)
	}
	resp, err := c.client.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, fmt.Errorf("http-%d response exceeds %d bytes: %w", resp.StatusCode, c.maxResponseSize, common.ErrResponseTooLarge)
	}
	return &common.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
