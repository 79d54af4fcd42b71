package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/database"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// HistoryRepository persists submission timeline events. It implements the
// engine's HistoryRecorder: Record is fire-and-forget, so a failed insert is
// logged and dropped rather than failing the operation that emitted it.
type HistoryRepository struct {
	log zerolog.Logger
}

// NewHistoryRepository creates a HistoryRepository.
func NewHistoryRepository(log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{log: log}
}

// Record writes one timeline event, swallowing errors.
func (r *HistoryRepository) Record(ctx context.Context, event models.HistoryEvent) {
	_, err := database.DB.Exec(ctx, `
        INSERT INTO submission_history (id, submission_id, event_type, actor_id, detail, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, event.ID, event.SubmissionID, string(event.Type), event.ActorID, event.Detail, event.CreatedAt)
	if err != nil {
		r.log.Warn().Err(err).
			Str("submission_id", event.SubmissionID).
			Str("event", string(event.Type)).
			Msg("failed to record history event")
	}
}

// ListBySubmission returns a submission's timeline, oldest first.
func (r *HistoryRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.HistoryEvent, error) {
	rows, err := database.DB.Query(ctx, `
        SELECT id, submission_id, event_type, actor_id, detail, created_at
        FROM submission_history
        WHERE submission_id = $1
        ORDER BY created_at
    `, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.HistoryEvent
	for rows.Next() {
		var ev models.HistoryEvent
		var eventType string
		if err := rows.Scan(&ev.ID, &ev.SubmissionID, &eventType, &ev.ActorID, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Type = models.HistoryEventType(eventType)
		events = append(events, ev)
	}
	return events, rows.Err()
}
