package transfer

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

// RegisterManagerRoutes mounts creation and delivery (lab manager side).
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.POST("/transfers", h.Create)
	rg.GET("/transfers", h.List)
	rg.GET("/transfers/:id", h.Get)
	rg.POST("/transfers/:id/deliver", h.Deliver)
}

// RegisterAdminRoutes mounts the decision surface (school admin side).
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/transfers/:id/approve", h.Approve)
	rg.POST("/transfers/:id/reject", h.Reject)
	rg.GET("/certificates", h.ListCertificates)
	rg.GET("/certificates/:id", h.GetCertificate)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	t, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transfer": t})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid transfer ID")
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfer": t})
}

func (h *Handler) List(c *gin.Context) {
	status := domain.TransferStatus(c.Query("status"))
	ts, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfers": ts})
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid transfer ID")
		return
	}
	t, err := h.service.Approve(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfer": t})
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid transfer ID")
		return
	}
	var req RejectTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reason is required")
		return
	}
	t, err := h.service.Reject(c.Request.Context(), c.GetInt64("user_id"), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfer": t})
}

func (h *Handler) Deliver(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid transfer ID")
		return
	}
	t, err := h.service.Deliver(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transfer": t})
}

func (h *Handler) GetCertificate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid certificate ID")
		return
	}
	cert, err := h.service.GetCertificate(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificate": cert})
}

func (h *Handler) ListCertificates(c *gin.Context) {
	certs, err := h.service.ListCertificates(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrStateConflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, domain.ErrQuantityMismatch):
		response.Error(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
