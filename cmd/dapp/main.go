package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cryptodevs/whitelist-dapp/internal/config"
	"github.com/cryptodevs/whitelist-dapp/internal/config/di"
	"github.com/cryptodevs/whitelist-dapp/internal/event"
	"github.com/cryptodevs/whitelist-dapp/internal/view"
	"github.com/cryptodevs/whitelist-dapp/internal/whitelist"
	"github.com/mattn/go-colorable"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	container *di.Container
	stdout    = colorable.NewColorableStdout()
	stderr    = colorable.NewColorableStderr()
)

func main() {
	config.Init("dapp")

	var err error
	if container, err = di.NewContainer(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() {
		_ = container.Delete()
	}()

	app := &cli.App{
		Name:  "dapp",
		Usage: "Crypto Devs whitelist",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the whitelist page",
				Action: serve,
			},
			{
				Name:   "status",
				Usage:  "Show the whitelist state of the configured wallet",
				Action: status,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the state as json"},
				},
			},
			{
				Name:   "join",
				Usage:  "Add the configured wallet to the whitelist",
				Action: join,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		zap.L().With(zap.Error(err)).Error("Command failed")
		stop()
		_ = container.Delete()
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg := container.GetConfig()

	if err := container.GetWalletManager().Initialize(); err != nil {
		return err
	}

	container.GetEvents().AddEventListener(event.WhitelistJoinedEvent, func(msg interface{}) {
		joined := msg.(view.Joined)
		zap.L().With(
			zap.String("address", joined.Address.Hex()),
			zap.String("tx", joined.Tx.Hex()),
			zap.Uint64("count", joined.Count),
		).Info("Address joined the whitelist")
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           container.GetServer().Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-c.Context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	zap.L().With(zap.String("port", cfg.Port), zap.String("network", container.GetWalletManager().Required().String())).Info("Whitelist dApp Started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func status(c *cli.Context) error {
	controller := container.NewController()
	if err := controller.OnConnect(c.Context); err != nil {
		return alert(err)
	}
	controller.Wait()

	state := controller.State()
	if c.Bool("json") {
		return json.NewEncoder(stdout).Encode(struct {
			view.State
			Control view.Control `json:"control"`
		}{state, view.Render(state)})
	}

	manager := container.GetWalletManager()
	fmt.Fprintf(stdout, "Network:  %s\n", manager.State().Network.Title())
	fmt.Fprintf(stdout, "Joined:   %d", state.Count)
	if limit, err := maxWhitelisted(c.Context); err == nil {
		fmt.Fprintf(stdout, " of %d", limit)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Status:   %s\n", describe(view.Render(state)))
	if state.Failure != nil {
		fmt.Fprintf(stderr, "\x1b[33m%s\x1b[0m\n", state.Failure.Message)
	}

	return nil
}

func maxWhitelisted(ctx context.Context) (uint64, error) {
	h, err := container.GetWalletManager().Provider(ctx)
	if err != nil {
		return 0, err
	}

	wl, err := container.GetBinder()(h)
	if err != nil {
		return 0, err
	}

	contract, ok := wl.(*whitelist.Contract)
	if !ok {
		return 0, errors.New("unsupported whitelist binding")
	}

	return contract.MaxWhitelistedAddresses(ctx)
}

func join(c *cli.Context) error {
	events := container.GetEvents()

	last := view.Control(-1)
	events.AddEventListener(event.StateChangedEvent, func(msg interface{}) {
		if control := view.Render(msg.(view.State)); control != last {
			last = control
			fmt.Fprintf(stdout, "> %s\n", describe(control))
		}
	})
	events.AddEventListener(event.WhitelistJoinedEvent, func(msg interface{}) {
		fmt.Fprintf(stdout, "Transaction %s confirmed\n", msg.(view.Joined).Tx.Hex())
	})

	controller := container.NewController()
	if err := controller.OnConnect(c.Context); err != nil {
		return alert(err)
	}
	controller.Wait()

	if err := controller.OnJoin(c.Context); err != nil {
		if errors.Is(err, view.ErrAlreadyJoined) {
			fmt.Fprintln(stdout, "Already on the whitelist")
			return nil
		}
		return alert(err)
	}

	// drain the listeners before the summary
	events.Close()
	fmt.Fprintf(stdout, "%d have already joined the Whitelist\n", controller.State().Count)

	return nil
}

func describe(control view.Control) string {
	switch control {
	case view.ConnectControl:
		return "Connect your wallet"
	case view.LoadingIndicator:
		return "...Loading"
	case view.ThankYouMessage:
		return "Thanks for joining the Whitelist"
	default:
		return "Join the Whitelist"
	}
}

// alert prints blocking failures the way the page would raise them.
func alert(err error) error {
	var failure *view.Failure
	if errors.As(err, &failure) && failure.Blocking {
		fmt.Fprintf(stderr, "\x1b[31m%s\x1b[0m\n", failure.Message)
	}

	return err
}
