package di

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptodevs/whitelist-dapp/internal/config"
	"github.com/cryptodevs/whitelist-dapp/internal/ethereum"
	"github.com/cryptodevs/whitelist-dapp/internal/event"
	"github.com/cryptodevs/whitelist-dapp/internal/view"
	"github.com/cryptodevs/whitelist-dapp/internal/wallet"
	"github.com/cryptodevs/whitelist-dapp/internal/web"
	"github.com/cryptodevs/whitelist-dapp/internal/whitelist"
	"github.com/cryptodevs/whitelist-dapp/pkg/network"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

const (
	ConfigDef        = "config"
	HttpClientDef    = "rpc.http"
	DialerDef        = "rpc.dialer"
	WalletManagerDef = "wallet.manager"
	BinderDef        = "whitelist.binder"
	EventsDef        = "events"
	SessionsDef      = "session.cache"
	ServerDef        = "web.server"
)

var Definitions = []di.Def{
	{
		Name: ConfigDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return config.Get(), nil
		},
	},
	{
		Name: HttpClientDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)
			return ethereum.NewHTTPClient(cfg.Ethereum.TimeoutDuration(), cfg.Ethereum.RetryMax, cfg.Ethereum.Debug), nil
		},
		Close: func(obj interface{}) error {
			obj.(*retryablehttp.Client).HTTPClient.CloseIdleConnections()
			return nil
		},
	},
	{
		Name: DialerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			url := ctn.Get(ConfigDef).(*config.Config).Ethereum.Url
			httpClient := ctn.Get(HttpClientDef).(*retryablehttp.Client)

			return wallet.Dialer(func(ctx context.Context) (wallet.Provider, error) {
				client, err := ethereum.Dial(ctx, url, httpClient)
				if err != nil {
					return nil, err
				}
				return client, nil
			}), nil
		},
	},
	{
		Name: WalletManagerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)
			dial := ctn.Get(DialerDef).(wallet.Dialer)

			build := func() (wallet.Connector, error) {
				switch {
				case cfg.Wallet.PrivateKey != "":
					return wallet.NewKeyConnector(cfg.Wallet.PrivateKey, dial)
				case cfg.Wallet.Keystore != "":
					return wallet.NewKeystoreConnector(cfg.Wallet.Keystore, cfg.Wallet.Account, cfg.Wallet.Passphrase, wallet.TerminalPrompt, dial)
				default:
					return nil, fmt.Errorf("%w: set WALLET_PRIVATE_KEY or WALLET_KEYSTORE", wallet.ErrNoAccount)
				}
			}

			return wallet.NewManager(network.ByChainId(cfg.Whitelist.ChainId), build, nil), nil
		},
	},
	{
		Name: BinderDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)

			addr, err := whitelist.ParseAddress(cfg.Whitelist.ContractAddress)
			if err != nil {
				zap.L().With(zap.Error(err), zap.String("address", cfg.Whitelist.ContractAddress)).Error("Whitelist contract address is not valid")
			}

			return view.Binder(func(h wallet.Handle) (view.Whitelist, error) {
				if err != nil {
					return nil, err
				}
				return whitelist.New(addr, h.Backend()), nil
			}), nil
		},
	},
	{
		Name: EventsDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
		Close: func(obj interface{}) error {
			obj.(*event.Manager).Close()
			return nil
		},
	},
	{
		Name: SessionsDef,
		Build: func(ctn di.Container) (interface{}, error) {
			ttl := ctn.Get(ConfigDef).(*config.Config).Session.TtlDuration()
			return cache.New(ttl, 10*time.Minute), nil
		},
		Close: func(obj interface{}) error {
			obj.(*cache.Cache).Flush()
			return nil
		},
	},
	{
		Name: ServerDef,
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := ctn.Get(ConfigDef).(*config.Config)
			manager := ctn.Get(WalletManagerDef).(*wallet.Manager)
			binder := ctn.Get(BinderDef).(view.Binder)
			events := ctn.Get(EventsDef).(*event.Manager)

			newController := func() *view.Controller {
				return view.NewController(manager, binder, events, view.WithJoinTimeout(cfg.Whitelist.JoinTimeoutDuration()))
			}

			return web.NewServer(ctn.Get(SessionsDef).(*cache.Cache), newController, cfg.AutoConnect), nil
		},
	},
}
