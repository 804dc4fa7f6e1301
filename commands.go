package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/busfinder/internal/catalog"
	"github.com/danpilch/busfinder/internal/config"
	"github.com/danpilch/busfinder/internal/finder"
	"github.com/danpilch/busfinder/internal/monitor"
	"github.com/danpilch/busfinder/internal/notify"
	"github.com/danpilch/busfinder/internal/render"
	"github.com/danpilch/busfinder/internal/scheduler"
	"github.com/danpilch/busfinder/internal/server"
)

// App carries what every command needs.
type App struct {
	Globals
	logger *logrus.Logger
	out    io.Writer
}

// loadConfig reads the config file. When --catalog is given the file may be
// absent and defaults are used instead.
func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.Config)
	if err != nil {
		if a.Catalog != "" && errors.Is(err, fs.ErrNotExist) {
			return config.Default(a.Catalog), nil
		}
		return nil, err
	}
	if a.Catalog != "" {
		cfg.Catalog = a.Catalog
	}
	return cfg, nil
}

func (a *App) loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(ctx, cfg.Catalog)
	if err != nil {
		return nil, errors.Wrap(err, "loading catalog")
	}

	a.logger.WithFields(logrus.Fields{
		"source":      cfg.Catalog,
		"routes":      len(cat.Buses),
		"major_stops": len(cat.MajorStops),
	}).Debug("catalog loaded")

	return cat, nil
}

func (a *App) setup(ctx context.Context) (*config.Config, *catalog.Catalog, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cat, err := a.loadCatalog(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

func notifierFromEnv(logger *logrus.Logger) (*notify.Notifier, error) {
	token := os.Getenv("PUSHOVER_TOKEN")
	user := os.Getenv("PUSHOVER_USER")
	if token == "" || user == "" {
		return nil, errors.New("PUSHOVER_TOKEN and PUSHOVER_USER environment variables are required")
	}
	return notify.NewNotifier(token, user, logger), nil
}

type SearchCmd struct {
	From   string `help:"Source stop, matched as a case-insensitive substring" required:""`
	To     string `help:"Destination stop, matched as a case-insensitive substring" required:""`
	JSON   bool   `help:"Print the result as JSON" name:"json"`
	Notify bool   `help:"Also push the plan via Pushover"`
}

func (c *SearchCmd) Run(app *App) error {
	if strings.TrimSpace(c.From) == "" || strings.TrimSpace(c.To) == "" {
		return errors.New("--from and --to must not be blank")
	}

	_, cat, err := app.setup(context.Background())
	if err != nil {
		return err
	}

	q := finder.Query{Source: c.From, Destination: c.To}
	res := finder.Search(q, cat.Buses)

	app.logger.WithFields(logrus.Fields{
		"from":     q.Source,
		"to":       q.Destination,
		"kind":     res.Kind(),
		"direct":   len(res.Direct),
		"indirect": len(res.Indirect),
	}).Debug("search completed")

	var plan strings.Builder
	if err := render.Text(&plan, q, res); err != nil {
		return err
	}

	if c.JSON {
		err = render.JSON(app.out, q, res)
	} else {
		_, err = io.WriteString(app.out, plan.String())
	}
	if err != nil {
		return err
	}

	if !c.Notify {
		return nil
	}

	notifier, err := notifierFromEnv(app.logger)
	if err != nil {
		return err
	}
	if res.Kind() == finder.KindNone {
		return notifier.SendNoRoute(q.Source, q.Destination)
	}
	return notifier.SendTripPlan(q.Source, q.Destination, plan.String())
}

type RoutesCmd struct {
	Query string `arg:"" optional:"" help:"Filter by bus number, name or stop"`
}

func (c *RoutesCmd) Run(app *App) error {
	_, cat, err := app.setup(context.Background())
	if err != nil {
		return err
	}

	buses := cat.Filter(c.Query)
	fmt.Fprintf(app.out, "%d routes\n", len(buses))
	for _, bus := range buses {
		fmt.Fprintf(app.out, "\n%s [%s] %s\n", bus.Number, render.LineLabel(bus.Type), bus.Name)
		fmt.Fprintf(app.out, "  Route: %s\n", strings.Join(bus.Stops, " -> "))
		if len(bus.Landmarks) > 0 {
			fmt.Fprintf(app.out, "  Near landmarks: %s\n", strings.Join(bus.Landmarks, " • "))
		}
	}
	return nil
}

type StopsCmd struct {
	Text  string `arg:"" help:"Part of a stop name"`
	Limit int    `help:"Maximum number of suggestions" default:"5"`
}

func (c *StopsCmd) Run(app *App) error {
	_, cat, err := app.setup(context.Background())
	if err != nil {
		return err
	}

	for _, stop := range cat.Suggest(c.Text, c.Limit) {
		fmt.Fprintln(app.out, stop)
	}
	return nil
}

type ServeCmd struct {
	Addr string `help:"Listen address, overrides the config file"`
}

func (c *ServeCmd) Run(app *App) error {
	ctx, cancel := signalContext(app.logger)
	defer cancel()

	cfg, cat, err := app.setup(ctx)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	srv := server.New(cfg.Server, cat, app.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}

	app.logger.Info("server stopped")
	return <-errCh
}

type WatchCmd struct{}

func (c *WatchCmd) Run(app *App) error {
	ctx, cancel := signalContext(app.logger)
	defer cancel()

	cfg, cat, err := app.setup(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Commutes) == 0 {
		return errors.New("no commutes configured")
	}

	notifier, err := notifierFromEnv(app.logger)
	if err != nil {
		return err
	}

	commuteMonitor := monitor.NewCommuteMonitor(cat, notifier, app.logger)
	sched := scheduler.NewScheduler(cfg, commuteMonitor, app.logger)

	for _, commute := range cfg.Commutes {
		app.logger.WithFields(logrus.Fields{
			"commute":       commute.Name,
			"route":         commute.From + " -> " + commute.To + " @ " + commute.Departure,
			"notify_before": commute.NotifyBefore.String(),
		}).Info("watching commute")
	}
	app.logger.Info("starting busfinder watch")

	sched.Start(ctx)

	<-ctx.Done()

	sched.Stop()
	app.logger.Info("busfinder watch stopped")
	return nil
}
