// Package events publishes session messages to NATS so external collectors
// (loggers, report builders) can observe a run without coupling to the loop.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/qhy991/vagent/coordinator"
)

// subjectPrefix is the subject root for session message streams. The full
// subject is vagent.session.<session-id>.messages.
const subjectPrefix = "vagent.session"

// Publisher forwards task messages to NATS. A nil Publisher or one created
// without a connection degrades to a no-op, so callers can wire the hook
// unconditionally.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials the NATS server at url and returns a publisher over it.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}, nil
}

// envelope is the published wire form of one task message.
type envelope struct {
	SessionID string                  `json:"session_id"`
	Message   coordinator.TaskMessage `json:"message"`
}

// Hook returns a MessageHook bound to one session ID. Publish failures are
// logged and swallowed: observability must not fail the session.
func (p *Publisher) Hook(sessionID string) coordinator.MessageHook {
	return func(msg coordinator.TaskMessage) {
		if p == nil || p.conn == nil {
			return
		}
		data, err := json.Marshal(envelope{SessionID: sessionID, Message: msg})
		if err != nil {
			p.logger.Warn("Failed to marshal session message",
				"session_id", sessionID,
				"message_id", msg.ID,
				"error", err)
			return
		}
		subject := fmt.Sprintf("%s.%s.messages", subjectPrefix, sessionID)
		if err := p.conn.Publish(subject, data); err != nil {
			p.logger.Warn("Failed to publish session message",
				"subject", subject,
				"message_id", msg.ID,
				"error", err)
		}
	}
}

// Close flushes and closes the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Flush(); err != nil {
		p.logger.Warn("Failed to flush nats connection", "error", err)
	}
	p.conn.Close()
}
