package practice

import (
	"time"

	"github.com/abhisek/codedrill/internal/handoff"
)

// spinnerTickMsg is sent at short intervals to animate the loading spinner.
type spinnerTickMsg time.Time

// bootstrapMsg carries the payload consumed from a handoff slot when this
// session was opened by another one.
type bootstrapMsg struct {
	Payload handoff.Payload
	Err     error
}

// handoffPreparedMsg is sent once the slot is open and the new session has
// been launched (or failed to launch).
type handoffPreparedMsg struct {
	Ticket *handoff.Ticket
	Err    error
}

// handoffDeliveredMsg is sent when the payload has been written for the
// spawned session, or the handshake gave up.
type handoffDeliveredMsg struct {
	Ticket *handoff.Ticket
	Err    error
}

// handoffCancelledMsg is sent after the user abandoned a pending handoff.
type handoffCancelledMsg struct {
	Ticket *handoff.Ticket
	Err    error
}
