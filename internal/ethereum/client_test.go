package ethereum

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
)

func rpcServer(t *testing.T, failures int32, result string) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var req struct {
			Id     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eth_chainId", req.Method)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.Id,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestDialRequiresUrl(t *testing.T) {
	_, err := Dial(context.Background(), "", NewHTTPClient(time.Second, 0, false))
	assert.EqualError(t, err, "bad call missing argument host")
}

func TestChainIdThroughRetryingTransport(t *testing.T) {
	srv, calls := rpcServer(t, 1, "0x5")

	httpClient := NewHTTPClient(5*time.Second, 2, true)
	httpClient.RetryWaitMin = time.Millisecond
	httpClient.RetryWaitMax = time.Millisecond

	client, err := Dial(context.Background(), srv.URL, httpClient)
	require.NoError(t, err)
	defer client.Close()

	chainId, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), chainId.Uint64())
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(7*time.Second, 4, false)

	assert.Equal(t, 4, c.RetryMax)
	assert.Equal(t, 7*time.Second, c.HTTPClient.Timeout)
	assert.Nil(t, c.ResponseLogHook)
	assert.NotNil(t, c.RequestLogHook)
}
