// Package automation is the fire-and-forget HTTP proxy to the external job
// automation service. Approved submissions are pushed over; failures are
// logged and never surfaced to the user-facing operation.
package automation

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
)

// Client posts approved submissions to the automation service. A nil *Client
// is valid and does nothing, keeping the integration optional.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient creates an automation client for the given base URL.
// Returns nil when baseURL is empty (integration disabled).
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		return nil
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{http: http, log: log}
}

// approvedPayload is the wire shape the automation service expects.
type approvedPayload struct {
	SubmissionID string          `json:"submissionId"`
	FlowID       string          `json:"flowId"`
	BranchID     string          `json:"branchId"`
	FormData     models.FormData `json:"formData"`
	ApprovedAt   time.Time       `json:"approvedAt"`
}

// NotifyApproved pushes a fully approved submission to the automation
// service in the background. The caller never waits on or learns about the
// outcome; delivery is best-effort.
func (c *Client) NotifyApproved(sub *models.Submission) {
	if c == nil {
		return
	}

	payload := approvedPayload{
		SubmissionID: sub.ID,
		FlowID:       sub.FlowID,
		BranchID:     sub.BranchID,
		FormData:     sub.FormData,
		ApprovedAt:   time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(payload).
			Post("/jobs/submissions")
		if err != nil {
			c.log.Warn().Err(err).Str("submission_id", sub.ID).Msg("automation push failed")
			return
		}
		if resp.IsError() {
			c.log.Warn().Int("status", resp.StatusCode()).
				Str("submission_id", sub.ID).Msg("automation service rejected push")
			return
		}
		c.log.Info().Str("submission_id", sub.ID).Msg("submission pushed to automation service")
	}()
}
