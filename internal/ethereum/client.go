package ethereum

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Backend is everything a contract binding needs from a node: calls, transactions and receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// NewHTTPClient builds the retrying transport every RPC request goes through.
func NewHTTPClient(timeout time.Duration, retryMax int, debug bool) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = retryMax
	retryClient.HTTPClient.Timeout = timeout

	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			zap.L().With(zap.String("url", req.URL.Redacted()), zap.Int("attempt", attempt)).Warn("Ethereum: RPC Retry")
			return
		}
		if debug {
			zap.L().With(zap.String("url", req.URL.Redacted())).Debug("Ethereum: RPC Request")
		}
	}
	if debug {
		retryClient.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
			zap.L().With(zap.Int("status", resp.StatusCode)).Debug("Ethereum: RPC Response")
		}
	}

	return retryClient
}

// Dial connects to the node at url. For http(s) endpoints nothing is sent until the first call.
func Dial(ctx context.Context, url string, httpClient *retryablehttp.Client) (*ethclient.Client, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	c, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(httpClient.StandardClient()))
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("url", url)).Warn("Ethereum: RPC Failure")
		return nil, err
	}

	return ethclient.NewClient(c), nil
}
