package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/services"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type ProjectHandler struct {
	log            *logger.Logger
	projectService services.ProjectService
}

func NewProjectHandler(log *logger.Logger, projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		log:            log.With("handler", "ProjectHandler"),
		projectService: projectService,
	}
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	project, err := h.projectService.GetProject(c.Request.Context(), nil, projectID)
	if err != nil {
		h.log.Error("GetProject failed", "error", err, "project_id", projectID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var project types.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.projectService.CreateProject(c.Request.Context(), nil, &project)
	if err != nil {
		h.log.Error("CreateProject failed", "error", err)
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"project": created})
}

type addToProgramBookRequest struct {
	ProgramBookID uuid.UUID `json:"program_book_id" binding:"required"`
	Year          int       `json:"year" binding:"required"`
}

func (h *ProjectHandler) AddToProgramBook(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req addToProgramBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	project, err := h.projectService.AddToProgramBook(c.Request.Context(), nil, projectID, req.ProgramBookID, req.Year)
	if err != nil {
		h.log.Error("AddToProgramBook failed", "error", err, "project_id", projectID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}
