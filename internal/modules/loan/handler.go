package loan

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

// RegisterStudentRoutes mounts the actions a student may take.
func (h *Handler) RegisterStudentRoutes(rg *gin.RouterGroup) {
	rg.POST("/loans", h.CreateLoan)
	rg.GET("/loans/my", h.ListMyLoans)
	rg.POST("/loans/:id/request-return", h.RequestReturn)
}

// RegisterManagerRoutes mounts the lab manager's approval surface.
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.GET("/loans", h.ListLoans)
	rg.GET("/loans/:id", h.GetLoan)
	rg.POST("/loans/:id/approve", h.Approve)
	rg.POST("/loans/:id/reject", h.Reject)
	rg.POST("/loans/:id/return", h.RecordReturn)
}

func (h *Handler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.CreateLoan(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"loan": l})
}

func (h *Handler) GetLoan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}
	l, err := h.service.GetLoan(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": l})
}

func (h *Handler) ListMyLoans(c *gin.Context) {
	loans, err := h.service.ListMyLoans(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loans": loans})
}

func (h *Handler) ListLoans(c *gin.Context) {
	status := domain.LoanStatus(c.Query("status"))
	loans, err := h.service.ListLoans(c.Request.Context(), status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loans": loans})
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}
	var req ApproveLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.Approve(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": l})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}
	var req RejectLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reason is required")
		return
	}
	l, err := h.service.Reject(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": l})
}

func (h *Handler) RequestReturn(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}
	l, err := h.service.RequestReturn(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": l})
}

func (h *Handler) RecordReturn(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.RecordReturn(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"loan": l})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrStateConflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, domain.ErrQuantityMismatch):
		response.Error(c, http.StatusUnprocessableEntity, "QUANTITY_MISMATCH", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		response.Error(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, ErrOverdueReturnRequired):
		response.Error(c, http.StatusConflict, "OVERDUE_RETURN_REQUIRED", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
