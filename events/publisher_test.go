package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qhy991/vagent/coordinator"
)

func TestHookIsSafeWithoutConnection(t *testing.T) {
	// A publisher without a live connection degrades to a no-op hook so
	// callers can wire it unconditionally.
	var p *Publisher
	hook := p.Hook("session-1")
	assert.NotPanics(t, func() {
		hook(coordinator.TaskMessage{ID: "m1", Role: coordinator.RoleUser, Content: "x"})
	})

	empty := &Publisher{}
	assert.NotPanics(t, func() {
		empty.Hook("session-2")(coordinator.TaskMessage{ID: "m2"})
	})
	assert.NotPanics(t, empty.Close)
	assert.NotPanics(t, p.Close)
}

func TestConnectRejectsUnreachableServer(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", nil)
	assert.Error(t, err)
}
