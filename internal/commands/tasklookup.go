package commands

import (
	"context"
	"fmt"

	"tasksession/internal/service"
	"tasksession/internal/session"
)

// errPosOutOfRange reports a --pos past the end of the listing.
type errPosOutOfRange struct{ pos int }

func (e errPosOutOfRange) Error() string {
	return fmt.Sprintf("task position out of range: %d", e.pos)
}

// resolveTaskRef turns ref into a server id. Positions are resolved against
// a fresh fetch so they match what list would print right now.
func resolveTaskRef(ctx context.Context, sess *session.Client, ref TaskRef) (int64, error) {
	if !ref.ByPos {
		return ref.ID, nil
	}

	tasks, err := sess.LoadTasks(ctx)
	if err != nil {
		return 0, err
	}
	task, ok := taskAt(tasks, ref.Pos)
	if !ok {
		return 0, errPosOutOfRange{ref.Pos}
	}
	return task.ID, nil
}

func taskAt(tasks []service.Task, pos int) (service.Task, bool) {
	if pos < 1 || pos > len(tasks) {
		return service.Task{}, false
	}
	return tasks[pos-1], true
}
