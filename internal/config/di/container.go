package di

import (
	"github.com/cryptodevs/whitelist-dapp/internal/config"
	"github.com/cryptodevs/whitelist-dapp/internal/event"
	"github.com/cryptodevs/whitelist-dapp/internal/view"
	"github.com/cryptodevs/whitelist-dapp/internal/wallet"
	"github.com/cryptodevs/whitelist-dapp/internal/web"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
)

// Container gives typed access to the Definitions.
type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

func (c *Container) GetConfig() *config.Config {
	return c.ctn.Get(ConfigDef).(*config.Config)
}

func (c *Container) GetWalletManager() *wallet.Manager {
	return c.ctn.Get(WalletManagerDef).(*wallet.Manager)
}

func (c *Container) GetBinder() view.Binder {
	return c.ctn.Get(BinderDef).(view.Binder)
}

func (c *Container) GetEvents() *event.Manager {
	return c.ctn.Get(EventsDef).(*event.Manager)
}

func (c *Container) GetSessions() *cache.Cache {
	return c.ctn.Get(SessionsDef).(*cache.Cache)
}

func (c *Container) GetServer() *web.Server {
	return c.ctn.Get(ServerDef).(*web.Server)
}

// NewController builds a controller on the shared wallet manager and event bus.
func (c *Container) NewController() *view.Controller {
	cfg := c.GetConfig()
	return view.NewController(c.GetWalletManager(), c.GetBinder(), c.GetEvents(), view.WithJoinTimeout(cfg.Whitelist.JoinTimeoutDuration()))
}

// Delete closes everything the container built.
func (c *Container) Delete() error {
	return c.ctn.Delete()
}
