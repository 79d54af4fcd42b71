package repository

import (
	"context"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/cache"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// Store bundles the repositories into the workflow engine's Storage
// collaborator, with an optional Redis cache in front of flow hydration.
type Store struct {
	Submissions *SubmissionRepository
	Flows       *FlowRepository
	FlowCache   *cache.FlowCache // nil disables caching
}

// NewStore creates the engine-facing store. flowCache may be nil.
func NewStore(flowCache *cache.FlowCache) *Store {
	return &Store{
		Submissions: NewSubmissionRepository(),
		Flows:       NewFlowRepository(),
		FlowCache:   flowCache,
	}
}

// LoadSubmission implements workflow.Storage.
func (s *Store) LoadSubmission(ctx context.Context, id string) (*models.Submission, error) {
	return s.Submissions.GetByID(ctx, id)
}

// CreateSubmission implements workflow.Storage.
func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.Submissions.Create(ctx, sub)
}

// SaveSubmission implements workflow.Storage.
func (s *Store) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	return s.Submissions.Save(ctx, sub)
}

// CommitTransition implements workflow.Storage.
func (s *Store) CommitTransition(ctx context.Context, sub *models.Submission, expected models.SubmissionStatus, record *models.ApprovalRecord) error {
	return s.Submissions.CommitTransition(ctx, sub, expected, record)
}

// DeleteSubmission implements workflow.Storage.
func (s *Store) DeleteSubmission(ctx context.Context, id string) error {
	return s.Submissions.Delete(ctx, id)
}

// LoadFlowWithScreens implements workflow.Storage, consulting the flow cache
// before hydrating from the database.
func (s *Store) LoadFlowWithScreens(ctx context.Context, flowID string) (*models.FlowDefinition, error) {
	if flow := s.FlowCache.Get(ctx, flowID); flow != nil {
		return flow, nil
	}
	flow, err := s.Flows.LoadFlowWithScreens(ctx, flowID)
	if err != nil {
		return nil, err
	}
	s.FlowCache.Set(ctx, flow)
	return flow, nil
}
