package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/services"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type InterventionHandler struct {
	log                 *logger.Logger
	interventionService services.InterventionService
}

func NewInterventionHandler(log *logger.Logger, interventionService services.InterventionService) *InterventionHandler {
	return &InterventionHandler{
		log:                 log.With("handler", "InterventionHandler"),
		interventionService: interventionService,
	}
}

func (h *InterventionHandler) GetIntervention(c *gin.Context) {
	interventionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	intervention, err := h.interventionService.GetIntervention(c.Request.Context(), nil, interventionID)
	if err != nil {
		h.log.Error("GetIntervention failed", "error", err, "intervention_id", interventionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"intervention": intervention})
}

func (h *InterventionHandler) CreateIntervention(c *gin.Context) {
	var intervention types.Intervention
	if err := c.ShouldBindJSON(&intervention); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.interventionService.CreateIntervention(c.Request.Context(), nil, &intervention)
	if err != nil {
		h.log.Error("CreateIntervention failed", "error", err)
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"intervention": created})
}

func (h *InterventionHandler) SubmitIntervention(c *gin.Context) {
	interventionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	intervention, err := h.interventionService.SubmitIntervention(c.Request.Context(), nil, interventionID)
	if err != nil {
		h.log.Error("SubmitIntervention failed", "error", err, "intervention_id", interventionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"intervention": intervention})
}
