package noop

import (
	"context"
	"strings"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	"gotest.tools/v3/assert"
)

type captured struct {
	method string
	header http.Header
	body   string
}

func echoServer(got *captured) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*got = captured{method: r.Method, header: r.Header.Clone(), body: string(data)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"ec3y49fr"}`)
	}))
}

func TestSendWithBody(t *testing.T) {
	var got captured
	s := echoServer(&got)
	defer s.Close()
	client := CreateNoOpHttpClient(time.Second, 0)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer secret")
	resp, err := client.Send(context.Background(), common.MethodPatch, s.URL, headers, []byte(`{"name":"x"}`))
	assert.NilError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"id":"ec3y49fr"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "PATCH", got.method)
	assert.Equal(t, "Bearer secret", got.header.Get("Authorization"))
	assert.Equal(t, `{"name":"x"}`, got.body)
}

func TestGetNeverSendsBody(t *testing.T) {
	var got captured
	s := echoServer(&got)
	defer s.Close()
	client := CreateNoOpHttpClientWith(&http.Client{Timeout: time.Second}, 0)
	_, err := client.Send(context.Background(), common.MethodGet, s.URL, nil, []byte(`{"name":"x"}`))
	assert.NilError(t, err)
	assert.Equal(t, "GET", got.method)
	assert.Equal(t, "", got.body)
}

func TestTransportError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	s.Close()
	client := CreateNoOpHttpClient(time.Second, 0)
	_, err := client.Send(context.Background(), common.MethodGet, s.URL, nil, nil)
	assert.Check(t, err != nil)
}

func TestInvalidURL(t *testing.T) {
	client := CreateNoOpHttpClient(time.Second, 0)
	_, err := client.Send(context.Background(), common.MethodGet, "http://[::1", nil, nil)
	assert.ErrorContains(t, err, "build request")
}

func TestResponseSizeLimit(t *testing.T) {
	page := `[` + strings.Repeat(`{"id":"ec3y49fr"},`, 99) + `{"id":"last"}]`
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, page)
	}))
	defer s.Close()

	resp, err := CreateNoOpHttpClient(time.Second, int64(len(page))).Send(context.Background(), common.MethodGet, s.URL, nil, nil)
	assert.NilError(t, err)
	assert.Equal(t, page, string(resp.Body))

	_, err = CreateNoOpHttpClient(time.Second, int64(len(page)-1)).Send(context.Background(), common.MethodGet, s.URL, nil, nil)
	assert.ErrorIs(t, err, common.ErrResponseTooLarge)
	assert.ErrorContains(t, err, "http-200 response exceeds")
}

func TestDefaultResponseSizeLimit(t *testing.T) {
	body := `"` + strings.Repeat("x", DefaultMaxResponseSize) + `"`
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, body)
	}))
	defer s.Close()

	_, err := CreateNoOpHttpClient(5*time.Second, 0).Send(context.Background(), common.MethodGet, s.URL, nil, nil)
	assert.ErrorIs(t, err, common.ErrResponseTooLarge)
}
