package engine

import (
	"context"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/chainreact/chainreact/pkg/protocol"
)

// ProgressTracker maintains the per-node status map for one execution and
// persists it after every transition. Progress writes are best effort: a
// failed save never interrupts the walk.
type ProgressTracker struct {
	executions persistence.ExecutionRepository
	progress   *models.ExecutionProgress
	total      int
}

func NewProgressTracker(ctx context.Context, executions persistence.ExecutionRepository, executionID string, order []string) *ProgressTracker {
	progress := &models.ExecutionProgress{
		ExecutionID:    executionID,
		NodeStatuses:   make(map[string]models.NodeRunStatus, len(order)),
		NodeResults:    make(map[string]models.NodeResult, len(order)),
		CompletedNodes: make([]string, 0, len(order)),
	}

	// A resumed walk continues the stored snapshot: statuses, results and
	// the completed list from before the pause carry over.
	stored, err := executions.GetProgress(ctx, executionID)
	if err == nil {
		for nodeID, status := range stored.NodeStatuses {
			progress.NodeStatuses[nodeID] = status
		}

		for nodeID, result := range stored.NodeResults {
			progress.NodeResults[nodeID] = result
		}

		progress.CompletedNodes = append(progress.CompletedNodes, stored.CompletedNodes...)
	}

	for _, nodeID := range order {
		if _, tracked := progress.NodeStatuses[nodeID]; !tracked {
			progress.NodeStatuses[nodeID] = models.NodeRunPending
		}
	}

	return &ProgressTracker{
		executions: executions,
		total:      len(progress.NodeStatuses),
		progress:   progress,
	}
}

func (t *ProgressTracker) Start(ctx context.Context, nodeID string) {
	t.progress.NodeStatuses[nodeID] = models.NodeRunRunning
	t.progress.CurrentNodeID = nodeID
	t.flush(ctx)
}

func (t *ProgressTracker) Complete(ctx context.Context, nodeID string, result *protocol.ActionResult) {
	t.progress.NodeStatuses[nodeID] = models.NodeRunCompleted
	t.progress.NodeResults[nodeID] = models.NodeResult{
		NodeID:     nodeID,
		Status:     models.NodeRunCompleted,
		Output:     result.Output,
		OutputPort: result.OutputPort,
		FinishedAt: time.Now().UTC(),
	}
	t.progress.CompletedNodes = append(t.progress.CompletedNodes, nodeID)
	t.progress.CurrentNodeID = ""
	t.flush(ctx)
}

func (t *ProgressTracker) Fail(ctx context.Context, nodeID string, err error) {
	t.progress.NodeStatuses[nodeID] = models.NodeRunFailed
	t.progress.NodeResults[nodeID] = models.NodeResult{
		NodeID:     nodeID,
		Status:     models.NodeRunFailed,
		Error:      err.Error(),
		FinishedAt: time.Now().UTC(),
	}
	t.progress.CurrentNodeID = ""
	t.flush(ctx)
}

// Skip marks a node that will not run in this walk, either because its
// branch was not taken or because it is editor-only.
func (t *ProgressTracker) Skip(nodeID string) {
	t.progress.NodeStatuses[nodeID] = models.NodeRunSkipped
}

// Pause records the paused node without consuming it: the node stays
// pending so the resumed walk reports it again.
func (t *ProgressTracker) Pause(ctx context.Context, nodeID string) {
	t.progress.NodeStatuses[nodeID] = models.NodeRunPending
	t.progress.CurrentNodeID = nodeID
	t.flush(ctx)
}

// Finish marks every still-pending node as skipped and persists the final
// snapshot.
func (t *ProgressTracker) Finish(ctx context.Context) {
	for nodeID, status := range t.progress.NodeStatuses {
		if status == models.NodeRunPending {
			t.progress.NodeStatuses[nodeID] = models.NodeRunSkipped
		}
	}

	t.progress.CurrentNodeID = ""
	t.flush(ctx)
}

func (t *ProgressTracker) flush(ctx context.Context) {
	if t.total > 0 {
		t.progress.Percent = len(t.progress.CompletedNodes) * 100 / t.total
	}

	t.progress.UpdatedAt = time.Now().UTC()

	// Progress is advisory; the execution record is the source of truth.
	_ = t.executions.SaveProgress(ctx, t.progress)
}
