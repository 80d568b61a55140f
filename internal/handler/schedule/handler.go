package schedule

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/service/schedule"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/httputil"
)

type Handler struct {
	service  *schedule.Service
	validate *validator.Validate
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/slots")
	{
		slots.POST("", h.CreateSlot)
		slots.POST("/bulk", h.CreateSlots)
		slots.PUT("/:id", h.UpdateSlot)
		slots.DELETE("/:id", h.DeleteSlot)
	}
	r.GET("/doctors/:doctorId/slots", h.ListSlots)
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req model.CreateWeeklySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, slot)
}

func (h *Handler) CreateSlots(c *gin.Context) {
	var req model.BulkCreateWeeklySlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	slots, err := h.service.CreateSlots(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, slots)
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid slot ID", err))
		return
	}

	var req model.UpdateWeeklySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	slot, err := h.service.UpdateSlot(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slot)
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid slot ID", err))
		return
	}

	if err := h.service.DeleteSlot(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) ListSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	day := -1
	if raw := c.Query("day"); raw != "" {
		day, err = strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			httputil.RespondWithError(c, apperrors.BadRequest("day must be between 0 and 6", err))
			return
		}
	}

	slots, err := h.service.ListByDoctorAndDay(c.Request.Context(), doctorID, day)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}
