package override

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/service/override"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/httputil"
)

type Handler struct {
	service  *override.Service
	validate *validator.Validate
}

func NewHandler(service *override.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	overrides := r.Group("/overrides")
	{
		overrides.POST("", h.CreateOverride)
		overrides.PUT("/:id", h.UpdateOverride)
		overrides.DELETE("/:id", h.DeleteOverride)
	}
	r.GET("/doctors/:doctorId/overrides", h.ListOverrides)
	r.PUT("/doctors/:doctorId/overrides", h.UpsertOverrides)
}

func (h *Handler) CreateOverride(c *gin.Context) {
	var req model.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ov, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, ov)
}

func (h *Handler) UpdateOverride(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid override ID", err))
		return
	}

	var req model.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ov, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, ov)
}

func (h *Handler) DeleteOverride(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid override ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) ListOverrides(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	overrides, err := h.service.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, overrides)
}

// UpsertOverrides replaces the doctor's override set with the submitted one.
// Entries are matched on date and window, so resubmitting the same payload
// is a no-op.
func (h *Handler) UpsertOverrides(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	var req model.UpsertOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	diff, err := h.service.UpsertMany(c.Request.Context(), doctorID, req.Overrides)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"inserted": len(diff.Inserts),
		"updated":  len(diff.Updates),
		"deleted":  len(diff.Deletes),
	})
}
