package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndReadReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mirror-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "abc", r.Header.Get("X-Session"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(0), WithUserAgent("mirror-test"), WithHeader("X-Session", "abc"))
	body, err := c.SendAndRead(context.Background(), &RequestOptions{URL: srv.URL})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestSendAndReadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.SendAndRead(context.Background(), &RequestOptions{URL: srv.URL})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "boom", se.Body)
}

func TestSendRequestHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(WithTimeout(0))
	_, err := c.SendAndRead(ctx, &RequestOptions{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSendAndParseDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"name":"x"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	c := NewClient()
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL,
		QueryParams: map[string][]string{"limit": {"5"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Name)
}

func TestSendAndReadCapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["0123456789"]`))
	}))
	defer srv.Close()

	c := NewClient(WithMaxBodySize(8))
	_, err := c.SendAndRead(context.Background(), &RequestOptions{URL: srv.URL})
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	c = NewClient(WithMaxBodySize(64))
	body, err := c.SendAndRead(context.Background(), &RequestOptions{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, `["0123456789"]`, string(body))
}
