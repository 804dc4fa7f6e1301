package monitor

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/busfinder/internal/catalog"
	"github.com/danpilch/busfinder/internal/config"
	"github.com/danpilch/busfinder/internal/finder"
	"github.com/danpilch/busfinder/internal/render"
)

// Notifier delivers trip plans to the commuter.
type Notifier interface {
	SendTripPlan(from, to, plan string) error
	SendNoRoute(from, to string) error
}

type CommuteMonitor struct {
	catalog  *catalog.Catalog
	notifier Notifier
	logger   *logrus.Logger

	mu       sync.Mutex
	notified map[string]bool
}

func NewCommuteMonitor(cat *catalog.Catalog, notifier Notifier, logger *logrus.Logger) *CommuteMonitor {
	return &CommuteMonitor{
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
		notified: make(map[string]bool),
	}
}

func (m *CommuteMonitor) ResetNotificationState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = make(map[string]bool)
}

// Plan searches the catalog for the commute and pushes the plan. Each commute
// is notified at most once until ResetNotificationState is called.
func (m *CommuteMonitor) Plan(ctx context.Context, commute config.CommuteConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	done := m.notified[commute.Name]
	m.mu.Unlock()
	if done {
		m.logger.WithField("commute", commute.Name).Debug("commute already notified today")
		return nil
	}

	q := finder.Query{Source: commute.From, Destination: commute.To}
	res := finder.Search(q, m.catalog.Buses)

	m.logger.WithFields(logrus.Fields{
		"commute":  commute.Name,
		"from":     q.Source,
		"to":       q.Destination,
		"kind":     res.Kind(),
		"direct":   len(res.Direct),
		"indirect": len(res.Indirect),
	}).Info("commute planned")

	if res.Kind() == finder.KindNone {
		m.logger.WithFields(logrus.Fields{
			"commute": commute.Name,
			"from":    q.Source,
			"to":      q.Destination,
		}).Warn("no route found for commute")
		if err := m.notifier.SendNoRoute(q.Source, q.Destination); err != nil {
			return err
		}
	} else {
		var plan strings.Builder
		if err := render.Text(&plan, q, res); err != nil {
			return errors.Wrap(err, "rendering plan")
		}
		if err := m.notifier.SendTripPlan(q.Source, q.Destination, plan.String()); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.notified[commute.Name] = true
	m.mu.Unlock()

	return nil
}
