// Package notifier provides the outbound notification capability: email
// over SMTP and real-time push over the websocket hub. Services depend on
// the Gateway interface so tests can substitute a recording fake.
package notifier

import (
	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
)

// Gateway is the notification contract consumed by the services.
type Gateway interface {
	// SendEmail delivers a plain-text email.
	SendEmail(to, subject, text string) error

	// PushEvent delivers a named event with a payload to every live
	// connection of a member. A member with no connections is not an
	// error.
	PushEvent(memberID, event string, payload interface{}) error
}

// Notifier is the production Gateway: SMTP mail plus hub-backed push.
type Notifier struct {
	mailer *Mailer
	hub    *models.Hub
	log    *logger.Logger
}

// New builds the production notifier.
func New(mailer *Mailer, hub *models.Hub, log *logger.Logger) *Notifier {
	return &Notifier{mailer: mailer, hub: hub, log: log}
}

// SendEmail delivers a plain-text email through the SMTP mailer.
func (n *Notifier) SendEmail(to, subject, text string) error {
	if err := n.mailer.Send(to, subject, text); err != nil {
		return err
	}
	n.log.Debug("email sent", "to", to, "subject", subject)
	return nil
}

// PushEvent marshals the event envelope and fans it out to the member's
// connections.
func (n *Notifier) PushEvent(memberID, event string, payload interface{}) error {
	message, err := marshalEvent(event, payload)
	if err != nil {
		return err
	}

	if !n.hub.SendToMember(memberID, message) {
		n.log.Debug("no live connections for member", "member_id", memberID, "event", event)
	}
	return nil
}
