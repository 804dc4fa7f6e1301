package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

type Globals struct {
	Config   string `help:"Path to config file" default:"config.yaml" type:"path"`
	Catalog  string `help:"Bus routes JSON file or http(s) URL, overrides the config file"`
	LogLevel string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error"`
}

var CLI struct {
	Globals

	Search SearchCmd `cmd:"" help:"Find buses between two stops"`
	Routes RoutesCmd `cmd:"" help:"Browse bus routes by number, name or stop"`
	Stops  StopsCmd  `cmd:"" help:"Suggest major stops matching some text"`
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP API"`
	Watch  WatchCmd  `cmd:"" help:"Push commute plans before each departure"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("busfinder"),
		kong.Description("Find city bus routes between two stops."),
		kong.UsageOnError(),
	)

	// Setup structured logging with logfmt; stdout is reserved for command output
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(CLI.LogLevel)
	if err != nil {
		logger.WithField("error", err).Fatal("invalid log level")
	}
	logger.SetLevel(level)

	app := &App{
		Globals: CLI.Globals,
		logger:  logger,
		out:     os.Stdout,
	}

	kctx.FatalIfErrorf(kctx.Run(app))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
