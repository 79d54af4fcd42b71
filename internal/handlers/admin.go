package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/export"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/middleware"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/models"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/repository"
	"github.com/ghostops5491/dealer-automation-unified-platform-sub000/internal/workflow"
)

// AdminHandler exposes records, dashboards, exports, and the administrative
// submission delete.
type AdminHandler struct {
	engine    *workflow.Engine
	subRepo   *repository.SubmissionRepository
	statsRepo *repository.StatsRepository
	log       zerolog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(engine *workflow.Engine, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		engine:    engine,
		subRepo:   repository.NewSubmissionRepository(),
		statsRepo: repository.NewStatsRepository(),
		log:       log,
	}
}

// branchScope resolves which branch a records/stats query covers: managers
// are pinned to their own branch, superadmins may pass ?branchId= or see all.
func branchScope(actor models.Actor, c *fiber.Ctx) string {
	if actor.Role == models.RoleSuperadmin {
		return c.Query("branchId")
	}
	return actor.BranchID
}

// Records lists enriched submission records for monitoring.
func (h *AdminHandler) Records(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	records, err := h.subRepo.ListRecords(c.Context(), branchScope(actor, c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}

// Stats returns submission counts per state.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	counts, err := h.statsRepo.CountByStatus(c.Context(), branchScope(actor, c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

// Export streams the submission records as an XLSX workbook.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	records, err := h.subRepo.ListRecords(c.Context(), branchScope(actor, c))
	if err != nil {
		return respondError(c, err)
	}

	buf, err := export.SubmissionsWorkbook(records)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build export workbook")
		return respondError(c, err)
	}

	filename := "submissions-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// DeleteSubmission is the explicit administrative delete; approved
// submissions are permanent and refuse deletion.
func (h *AdminHandler) DeleteSubmission(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)

	if err := h.engine.DeleteSubmission(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	h.log.Info().Str("submission_id", c.Params("id")).Str("deleted_by", actor.UserID).
		Msg("submission deleted")
	return c.JSON(fiber.Map{"ok": true})
}
