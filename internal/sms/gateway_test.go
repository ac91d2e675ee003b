package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thanujadevi/EMPOWERHER/internal/testutil"
)

func TestGateway_SendSMS(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	g := NewGateway(Options{BaseURL: srv.URL, APIKey: "key", Sender: "EMPOWERHER", Timeout: time.Second})
	require.NoError(t, g.SendSMS(context.Background(), "+15550001111", "code 123456"))

	assert.Equal(t, "EMPOWERHER", got.From)
	assert.Equal(t, "+15550001111", got.To)
	assert.Equal(t, "code 123456", got.Body)
}

func TestGateway_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid number"}`))
	}))
	defer srv.Close()

	g := NewGateway(Options{BaseURL: srv.URL, Timeout: time.Second})
	err := g.SendSMS(context.Background(), "bad", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid number")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGateway_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewGateway(Options{BaseURL: srv.URL, Timeout: time.Second})
	g.httpClient.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	require.NoError(t, g.SendSMS(context.Background(), "+1", "x"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(testutil.MakeNoopLogger())
	assert.NoError(t, s.SendSMS(context.Background(), "+1", "x"))
}
