package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/services"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type DecisionHandler struct {
	log             *logger.Logger
	decisionService services.DecisionService
}

func NewDecisionHandler(log *logger.Logger, decisionService services.DecisionService) *DecisionHandler {
	return &DecisionHandler{
		log:             log.With("handler", "DecisionHandler"),
		decisionService: decisionService,
	}
}

type addDecisionRequest struct {
	TypeID           types.DecisionType `json:"type_id" binding:"required"`
	Text             string             `json:"text"`
	TargetYear       *int               `json:"target_year"`
	StartYear        *int               `json:"start_year"`
	EndYear          *int               `json:"end_year"`
	AnnualPeriodYear *int               `json:"annual_period_year"`
}

func (h *DecisionHandler) AddProjectDecision(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req addDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	decision := types.Decision{
		TypeID:           req.TypeID,
		Text:             req.Text,
		TargetYear:       req.TargetYear,
		StartYear:        req.StartYear,
		EndYear:          req.EndYear,
		AnnualPeriodYear: req.AnnualPeriodYear,
	}
	project, err := h.decisionService.AddProjectDecision(c.Request.Context(), nil, projectID, decision)
	if err != nil {
		h.log.Error("AddProjectDecision failed", "error", err, "project_id", projectID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (h *DecisionHandler) AddInterventionDecision(c *gin.Context) {
	interventionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req addDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	decision := types.Decision{
		TypeID:     req.TypeID,
		Text:       req.Text,
		TargetYear: req.TargetYear,
	}
	intervention, err := h.decisionService.AddInterventionDecision(c.Request.Context(), nil, interventionID, decision)
	if err != nil {
		h.log.Error("AddInterventionDecision failed", "error", err, "intervention_id", interventionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"intervention": intervention})
}
