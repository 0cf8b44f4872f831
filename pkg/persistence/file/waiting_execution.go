package file

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
)

// WaitingExecutionRepository stores suspended executions under waiting/.
// MarkResumed runs under the persistence mutex so two concurrent intake
// calls cannot both claim the same record.
type WaitingExecutionRepository struct {
	persistence *Persistence
}

func (r *WaitingExecutionRepository) Create(_ context.Context, waiting *models.WaitingExecution) error {
	return r.persistence.writeJSON("waiting", waiting.ID, waiting)
}

func (r *WaitingExecutionRepository) GetByID(_ context.Context, id string) (*models.WaitingExecution, error) {
	waiting, err := readJSON[models.WaitingExecution](r.persistence, "waiting", id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrWaitingExecutionNotFound
		}

		return nil, err
	}

	return waiting, nil
}

func (r *WaitingExecutionRepository) GetOpenByExecution(_ context.Context, executionID string) (*models.WaitingExecution, error) {
	all, err := listJSON[models.WaitingExecution](r.persistence, "waiting")
	if err != nil {
		return nil, err
	}

	for _, waiting := range all {
		if waiting.ExecutionID == executionID && waiting.Status == models.WaitStatusWaiting {
			return waiting, nil
		}
	}

	return nil, persistence.ErrWaitingExecutionNotFound
}

// FindWaiting implements the coarse filter: open records of the given
// event type whose discriminators match the filter's.
func (r *WaitingExecutionRepository) FindWaiting(_ context.Context, filter persistence.WaitingFilter) ([]*models.WaitingExecution, error) {
	all, err := listJSON[models.WaitingExecution](r.persistence, "waiting")
	if err != nil {
		return nil, err
	}

	matches := make([]*models.WaitingExecution, 0, len(all))

	for _, waiting := range all {
		if waiting.Status != models.WaitStatusWaiting || waiting.EventType != filter.EventType {
			continue
		}

		if waiting.EventConfig.Provider != filter.Provider ||
			waiting.EventConfig.WebhookPath != filter.WebhookPath ||
			waiting.EventConfig.EventName != filter.EventName {
			continue
		}

		matches = append(matches, waiting)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	return matches, nil
}

func (r *WaitingExecutionRepository) FindExpired(_ context.Context, now time.Time) ([]*models.WaitingExecution, error) {
	all, err := listJSON[models.WaitingExecution](r.persistence, "waiting")
	if err != nil {
		return nil, err
	}

	expired := make([]*models.WaitingExecution, 0)

	for _, waiting := range all {
		if waiting.Status == models.WaitStatusWaiting && waiting.Expired(now) {
			expired = append(expired, waiting)
		}
	}

	return expired, nil
}

// MarkResumed transitions a record from waiting to resumed iff it is still
// waiting, and reports whether this call won the transition.
func (r *WaitingExecutionRepository) MarkResumed(ctx context.Context, id, reason string) (bool, error) {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	waiting, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	if waiting.Status != models.WaitStatusWaiting {
		return false, nil
	}

	resumedAt := now()
	waiting.Status = models.WaitStatusResumed
	waiting.ResumeReason = reason
	waiting.ResumedAt = &resumedAt

	err = r.persistence.writeJSON("waiting", id, waiting)
	if err != nil {
		return false, err
	}

	return true, nil
}
