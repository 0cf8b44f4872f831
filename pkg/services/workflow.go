package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chainreact/chainreact/pkg/engine"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/google/uuid"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Workflow manages workflow definitions and their lifecycle: draft,
// active, archived. Structural validation happens on activation, not on
// every save, so drafts can be saved half-finished.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

func NewWorkflow(persistence persistence.Persistence, registry *registry.Registry) *Workflow {
	return &Workflow{
		persistence: persistence,
		registry:    registry,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	Limit  int
	Offset int

	UserID string
	Status *models.WorkflowStatus
}

// List retrieves workflows with filtering and pagination.
func (w *Workflow) List(ctx context.Context, req ListWorkflowsRequest) ([]*models.Workflow, error) {
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}

	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.Status != nil && !validWorkflowStatus(*req.Status) {
		return nil, NewValidationError("ListWorkflows", "INVALID_STATUS",
			fmt.Sprintf("invalid status %q", *req.Status), ErrInvalidStatus)
	}

	workflows, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
		UserID: req.UserID,
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// Create adds a new workflow as a draft.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.Status = models.WorkflowStatusDraft
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	err := w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update modifies an existing workflow. Archived workflows are frozen.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing.Status == models.WorkflowStatusArchived {
		return nil, ErrWorkflowArchived
	}

	if workflow.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	workflow.ID = workflowID
	workflow.Status = existing.Status
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	// An active workflow must stay executable through edits.
	if existing.Status == models.WorkflowStatusActive {
		err = w.validateGraph(workflow)
		if err != nil {
			return nil, err
		}
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Activate validates the workflow graph and node configs, then transitions
// the workflow to active. Only active workflows can be executed.
func (w *Workflow) Activate(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.WorkflowStatusArchived {
		return nil, ErrWorkflowArchived
	}

	err = w.validateGraph(workflow)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatusActive
	workflow.UpdatedAt = time.Now().UTC()

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to activate workflow: %w", err)
	}

	return workflow, nil
}

// Archive retires the workflow. Archived workflows are kept for audit but
// can neither run nor change.
func (w *Workflow) Archive(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatusArchived
	workflow.UpdatedAt = time.Now().UTC()

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to archive workflow: %w", err)
	}

	return workflow, nil
}

// Delete soft-deletes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	_, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Validate checks a workflow graph and node configs without saving
// anything.
func (w *Workflow) Validate(_ context.Context, workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	return w.validateGraph(workflow)
}

func (w *Workflow) validateGraph(workflow *models.Workflow) error {
	if len(workflow.Nodes) == 0 {
		return ErrNodesRequired
	}

	if len(workflow.TriggerNodes()) == 0 {
		return ErrTriggerNodeRequired
	}

	err := engine.ValidateGraph(workflow)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	for _, node := range workflow.Nodes {
		if node.Type == models.NodeTypePlaceholder {
			continue
		}

		if !w.registry.IsRegistered(node.Type) {
			return fmt.Errorf("%w: node %s has type %q", ErrUnknownNodeType, node.ID, node.Type)
		}

		// Static config only: data-flow references resolve at run time, so
		// schema validation of a config with references is best effort.
		if !containsReferences(node.Config) {
			err = w.registry.ValidateConfig(node.Type, node.Config)
			if err != nil {
				return fmt.Errorf("%w: node %s: %w", ErrInvalidGraph, node.ID, err)
			}
		}
	}

	return nil
}

func containsReferences(value any) bool {
	switch typed := value.(type) {
	case string:
		return containsReferenceString(typed)
	case map[string]any:
		for _, nested := range typed {
			if containsReferences(nested) {
				return true
			}
		}
	case []any:
		for _, nested := range typed {
			if containsReferences(nested) {
				return true
			}
		}
	}

	return false
}

func containsReferenceString(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			return true
		}
	}

	return false
}

func validWorkflowStatus(status models.WorkflowStatus) bool {
	switch status {
	case models.WorkflowStatusDraft, models.WorkflowStatusActive, models.WorkflowStatusArchived:
		return true
	}

	return false
}
