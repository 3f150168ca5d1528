package repair

import (
	"errors"
	"net/http"
	"strconv"

	"labstock/internal/domain"
	"labstock/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterManagerRoutes mounts ticket intake and browsing (lab manager side).
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.POST("/repairs", h.Create)
	rg.GET("/repairs", h.List)
	rg.GET("/repairs/:id", h.Get)
}

// RegisterAdminRoutes mounts the status transitions (school admin side).
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/repairs/:id/approve", h.Approve)
	rg.POST("/repairs/:id/start", h.Start)
	rg.POST("/repairs/:id/complete", h.Complete)
	rg.POST("/repairs/:id/reject", h.Reject)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	t, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"ticket": t})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": t})
}

func (h *Handler) List(c *gin.Context) {
	var q ListTicketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}
	ts, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tickets": ts})
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return
	}
	t, err := h.service.Approve(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": t})
}

func (h *Handler) Start(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return
	}
	t, err := h.service.Start(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": t})
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return
	}
	var req CompleteTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	t, err := h.service.Complete(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": t})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return
	}
	var req RejectTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reason is required")
		return
	}
	t, err := h.service.Reject(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": t})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrStateConflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, ErrUnitNotBroken):
		response.Error(c, http.StatusUnprocessableEntity, "UNIT_NOT_BROKEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
