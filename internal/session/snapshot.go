package session

import "tasksession/internal/service"

// Snapshot is everything a presenter needs to draw the current state.
type Snapshot struct {
	Authenticated bool
	Tasks         []service.Task
	Loading       bool  // at least one operation is in flight
	Err           error // last failure, cleared when an operation starts
}

// Snapshot returns the current state. Tasks is a copy.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	tasks := append([]service.Task(nil), c.tasks...)
	lastErr := c.lastErr
	c.mu.Unlock()

	return Snapshot{
		Authenticated: c.IsAuthenticated(),
		Tasks:         tasks,
		Loading:       c.inflight.Load() > 0,
		Err:           lastErr,
	}
}
