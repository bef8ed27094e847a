// Package operations tracks long-running background work (collection
// refreshes, file moves, conversions) so clients can poll for progress.
// The registry is an explicitly-owned service object constructed once at
// startup; producers report through it and a polling endpoint reads from it.
package operations

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// StaleTimeout is how long a running operation may go without an update
	// before it is presumed abandoned and force-failed on the next read.
	StaleTimeout = 2 * time.Minute

	// CompletedTTL is how long finished operations remain visible to pollers
	// before being pruned.
	CompletedTTL = 60 * time.Second

	// StalledDetail is the detail message set on operations that hit the
	// stale timeout.
	StalledDetail = "Operation stalled"
)

// Operation status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Operation is a snapshot of one tracked unit of background work.
type Operation struct {
	ID          string     `json:"id"`
	OpType      string     `json:"op_type"`
	Label       string     `json:"label"`
	Status      string     `json:"status"`
	Current     int        `json:"current"`
	Total       int        `json:"total"`
	Detail      string     `json:"detail"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Fields carries a partial update; nil members are left untouched.
type Fields struct {
	Current *int
	Total   *int
	Detail  *string
}

// Registry is a process-wide concurrent store of operations. A single mutex
// guards every read and write; critical sections are short map mutations and
// never perform I/O.
type Registry struct {
	mu    sync.Mutex
	ops   map[string]*Operation
	order []string
}

// NewRegistry creates an empty operation registry.
func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]*Operation),
	}
}

// Register inserts a new running operation and returns its opaque id.
func (r *Registry) Register(opType, label string, total int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	r.ops[id] = &Operation{
		ID:        id,
		OpType:    opType,
		Label:     label,
		Status:    StatusRunning,
		Current:   0,
		Total:     total,
		Detail:    "Starting...",
		StartedAt: now,
		UpdatedAt: now,
	}
	r.order = append(r.order, id)
	return id
}

// Update applies the provided fields to an operation and refreshes its
// updated_at timestamp. Unknown ids are a silent no-op: the operation may
// have been pruned already, and producers should not need to guard.
func (r *Registry) Update(id string, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		return
	}
	if fields.Current != nil {
		op.Current = *fields.Current
	}
	if fields.Total != nil {
		op.Total = *fields.Total
	}
	if fields.Detail != nil {
		op.Detail = *fields.Detail
	}
	op.UpdatedAt = time.Now()
}

// Complete transitions an operation to its terminal status. On success the
// progress counter snaps to total so progress bars reach 100%; on failure it
// is left where it was. Unknown ids are a silent no-op.
func (r *Registry) Complete(id string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		return
	}
	now := time.Now()
	if failed {
		op.Status = StatusError
	} else {
		op.Status = StatusCompleted
		op.Current = op.Total
	}
	op.CompletedAt = &now
	op.UpdatedAt = now
}

// ListActive returns a snapshot of all surviving operations in registration
// order. Before returning it performs two sweeps under the same lock: running
// operations with no update within StaleTimeout are force-failed, and
// finished operations older than CompletedTTL are deleted. Pruning happens
// lazily on read because clients poll; there is no background sweeper.
func (r *Registry) ListActive() []Operation {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Sweep 1: fail running operations whose producer stopped reporting.
	for _, op := range r.ops {
		if op.Status == StatusRunning && now.Sub(op.UpdatedAt) > StaleTimeout {
			completed := now
			op.Status = StatusError
			op.Detail = StalledDetail
			op.CompletedAt = &completed
		}
	}

	// Sweep 2: drop finished operations past their retention window.
	kept := r.order[:0]
	for _, id := range r.order {
		op := r.ops[id]
		if op.CompletedAt != nil && now.Sub(*op.CompletedAt) > CompletedTTL {
			delete(r.ops, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept

	snapshot := make([]Operation, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, *r.ops[id])
	}
	return snapshot
}
