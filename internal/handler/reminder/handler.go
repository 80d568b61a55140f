package reminder

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/service/reminder"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/httputil"
)

type Handler struct {
	service  *reminder.Service
	validate *validator.Validate
}

func NewHandler(service *reminder.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/prescriptions", h.IntakePrescription)
}

// IntakePrescription accepts a prescription event and expands its duration
// into one daily medication reminder per day of the course.
func (h *Handler) IntakePrescription(c *gin.Context) {
	var p model.Prescription
	if err := c.ShouldBindJSON(&p); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Struct(&p); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	scheduled, err := h.service.ScheduleMedicationReminders(c.Request.Context(), &p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, gin.H{"reminders_scheduled": scheduled})
}
