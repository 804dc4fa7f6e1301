package notify

import (
	"fmt"

	"github.com/gregdel/pushover"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	PriorityNormal = 0
	PriorityHigh   = 1
)

type Notifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	logger    *logrus.Logger
}

func NewNotifier(token, userKey string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
		logger:    logger,
	}
}

func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	msg := pushover.NewMessageWithTitle(message, title)
	msg.Priority = priority

	resp, err := n.app.SendMessage(msg, n.recipient)
	if err != nil {
		return errors.Wrap(err, "sending pushover notification")
	}

	n.logger.WithFields(logrus.Fields{
		"title":      title,
		"status":     resp.Status,
		"request_id": resp.ID,
	}).Debug("notification sent")

	return nil
}

// SendTripPlan pushes a rendered plan for the trip from -> to.
func (n *Notifier) SendTripPlan(from, to, plan string) error {
	return n.Send(TripPlanTitle(from, to), plan)
}

// SendNoRoute warns that no bus connects from and to.
func (n *Notifier) SendNoRoute(from, to string) error {
	return n.SendWithPriority(TripPlanTitle(from, to), NoRouteMessage(from, to), PriorityHigh)
}

func TripPlanTitle(from, to string) string {
	return fmt.Sprintf("Bus plan: %s to %s", from, to)
}

func NoRouteMessage(from, to string) string {
	return fmt.Sprintf("No direct or single-transfer bus found from %s to %s.\nTry nearby stops or check the spelling.", from, to)
}
