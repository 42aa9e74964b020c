package board

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
)

// TaskAPI is the slice of the API client the board needs.
type TaskAPI interface {
	ListTasks(ctx context.Context, status string) ([]domain.Task, error)
	CreateTask(ctx context.Context, req transport.TaskCreateRequest) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) (*domain.Task, error)
}

// Columns groups tasks by status, each column ordered for display.
type Columns map[domain.Status][]domain.Task

func newColumns() Columns {
	cols := make(Columns, len(domain.Statuses))
	for _, s := range domain.Statuses {
		cols[s] = nil
	}
	return cols
}

func (c Columns) clone() Columns {
	out := make(Columns, len(c))
	for status, tasks := range c {
		dup := make([]domain.Task, len(tasks))
		copy(dup, tasks)
		out[status] = dup
	}
	return out
}

// ActionState tracks an optimistic mutation through its lifecycle.
type ActionState int

const (
	// ActionApplied means the local columns already reflect the change
	// but the server has not confirmed it yet.
	ActionApplied ActionState = iota
	ActionConfirmed
	ActionReverted
)

// Action is the record of one optimistic mutation. It owns the snapshot
// needed to undo itself, so a revert never depends on controller state
// captured after the apply.
type Action struct {
	State    ActionState
	snapshot Columns
}

// Controller keeps the board columns in sync with the server, applying
// drag-and-drop moves locally first and reverting them if the server
// rejects the change.
type Controller struct {
	api TaskAPI

	mu      sync.Mutex
	columns Columns

	notice      string
	noticeTimer *time.Timer
	noticeTTL   time.Duration

	logger *zap.Logger
}

func NewController(api TaskAPI, noticeTTL time.Duration, logger *zap.Logger) *Controller {
	if noticeTTL <= 0 {
		noticeTTL = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		api:       api,
		columns:   newColumns(),
		noticeTTL: noticeTTL,
		logger:    logger,
	}
}

// Refresh replaces the board with the server's current state.
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx, "")
	if err != nil {
		c.mu.Lock()
		c.setNoticeLocked(err.Error(), false)
		c.mu.Unlock()
		return err
	}

	cols := newColumns()
	for _, t := range tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}

	c.mu.Lock()
	c.columns = cols
	c.mu.Unlock()
	return nil
}

// Create adds a task through the server and appends the confirmed row
// to its column. Creation is not optimistic: the row needs its
// server-assigned ID before it can be dragged.
func (c *Controller) Create(ctx context.Context, req transport.TaskCreateRequest) (*domain.Task, error) {
	task, err := c.api.CreateTask(ctx, req)
	if err != nil {
		c.mu.Lock()
		c.setNoticeLocked(err.Error(), true)
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.columns[task.Status] = append(c.columns[task.Status], *task)
	c.mu.Unlock()
	return task, nil
}

// Move applies a drag-and-drop synchronously, then persists cross-column
// moves. On server failure the board is restored from the snapshot taken
// before the local change and the returned Action is ActionReverted.
func (c *Controller) Move(ctx context.Context, taskID string, from, to domain.Status, toIndex int) (*Action, error) {
	c.mu.Lock()

	action := &Action{State: ActionApplied, snapshot: c.columns.clone()}

	task, fromIdx := findTask(c.columns[from], taskID)
	if task == nil {
		c.mu.Unlock()
		return nil, domain.ErrTaskNotFound
	}

	moved := *task
	moved.Status = to
	c.columns[from] = removeAt(c.columns[from], fromIdx)
	c.columns[to] = insertAt(c.columns[to], moved, toIndex)

	if from == to {
		// Same-column reorder is a pure display change; nothing to persist.
		action.State = ActionConfirmed
		c.mu.Unlock()
		return action, nil
	}
	c.mu.Unlock()

	if _, err := c.api.UpdateTaskStatus(ctx, taskID, to); err != nil {
		c.mu.Lock()
		c.columns = action.snapshot
		action.State = ActionReverted
		c.setNoticeLocked("Failed to move task: "+err.Error(), true)
		c.mu.Unlock()
		c.logger.Warn("move reverted",
			zap.String("task_id", taskID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return action, err
	}

	c.mu.Lock()
	action.State = ActionConfirmed
	c.mu.Unlock()
	return action, nil
}

// Remove deletes a task optimistically. If the server rejects the
// delete, the board resynchronizes from the server rather than trusting
// the local snapshot, since a 404 means the row was already gone.
func (c *Controller) Remove(ctx context.Context, taskID string) (*Action, error) {
	c.mu.Lock()
	action := &Action{State: ActionApplied, snapshot: c.columns.clone()}

	removed := false
	for status, tasks := range c.columns {
		if task, idx := findTask(tasks, taskID); task != nil {
			c.columns[status] = removeAt(tasks, idx)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if !removed {
		return nil, domain.ErrTaskNotFound
	}

	if _, err := c.api.DeleteTask(ctx, taskID); err != nil {
		c.mu.Lock()
		action.State = ActionReverted
		c.setNoticeLocked("Failed to delete task: "+err.Error(), true)
		c.mu.Unlock()
		if refreshErr := c.Refresh(ctx); refreshErr != nil {
			c.logger.Warn("resync after failed delete", zap.Error(refreshErr))
		}
		return action, err
	}

	c.mu.Lock()
	action.State = ActionConfirmed
	c.mu.Unlock()
	return action, nil
}

// Column returns a copy of one column.
func (c *Controller) Column(status domain.Status) []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := c.columns[status]
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}

// Snapshot returns a copy of the whole board.
func (c *Controller) Snapshot() Columns {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.columns.clone()
}

// Notice returns the current user-facing notice, empty when none.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// setNoticeLocked installs a notice; transient notices clear themselves
// after noticeTTL. Callers must hold c.mu.
func (c *Controller) setNoticeLocked(msg string, transient bool) {
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
	c.notice = msg
	if !transient {
		return
	}
	c.noticeTimer = time.AfterFunc(c.noticeTTL, func() {
		c.mu.Lock()
		if c.notice == msg {
			c.notice = ""
		}
		c.mu.Unlock()
	})
}

func findTask(tasks []domain.Task, id string) (*domain.Task, int) {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], i
		}
	}
	return nil, -1
}

func removeAt(tasks []domain.Task, i int) []domain.Task {
	out := make([]domain.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insertAt(tasks []domain.Task, task domain.Task, i int) []domain.Task {
	if i < 0 || i > len(tasks) {
		i = len(tasks)
	}
	out := make([]domain.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, task)
	return append(out, tasks[i:]...)
}
