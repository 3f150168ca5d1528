package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"labstock/internal/domain"
	"labstock/internal/pkg/response"
	"labstock/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterReadRoutes mounts the browse surface available to every
// authenticated user.
func (h *Handler) RegisterReadRoutes(rg *gin.RouterGroup) {
	rg.GET("/models", h.ListModels)
	rg.GET("/units", h.ListUnits)
	rg.GET("/units/suggest", h.SuggestUnits)
	rg.GET("/stock", h.GetStock)
}

// RegisterManagerRoutes mounts unit intake and upkeep (lab manager side).
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.POST("/models/:id/units", h.IntakeUnits)
	rg.POST("/units/:id/retire", h.RetireUnit)
	rg.POST("/stock/reconcile", h.Reconcile)
}

// RegisterAdminRoutes mounts catalog administration (school admin side).
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/models", h.CreateModel)
	rg.POST("/models/:id/verify", h.VerifyModel)
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	m, err := h.service.CreateModel(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"model": m})
}

func (h *Handler) ListModels(c *gin.Context) {
	verifiedOnly := c.Query("verified") == "true"
	models, err := h.service.ListModels(c.Request.Context(), verifiedOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"models": models})
}

func (h *Handler) VerifyModel(c *gin.Context) {
	modelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid model ID")
		return
	}
	m, err := h.service.VerifyModel(c.Request.Context(), c.GetInt64("user_id"), modelID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"model": m})
}

func (h *Handler) IntakeUnits(c *gin.Context) {
	modelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid model ID")
		return
	}
	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.ModelID = modelID
	units, err := h.service.IntakeUnits(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"units": units})
}

func (h *Handler) ListUnits(c *gin.Context) {
	var f repository.UnitFilters
	if v := c.Query("model_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid model ID")
			return
		}
		f.ModelID = id
	}
	f.Location = domain.Location(c.Query("location"))
	f.Status = domain.UnitStatus(c.Query("status"))

	units, err := h.service.ListUnits(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"units": units})
}

func (h *Handler) SuggestUnits(c *gin.Context) {
	modelID, _ := strconv.ParseInt(c.Query("model_id"), 10, 64)
	qty, _ := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	loc := domain.Location(c.Query("location"))

	res, err := h.service.SuggestUnits(c.Request.Context(), modelID, loc, qty)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) RetireUnit(c *gin.Context) {
	unitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid unit ID")
		return
	}
	u, err := h.service.RetireUnit(c.Request.Context(), c.GetInt64("user_id"), unitID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unit": u})
}

func (h *Handler) GetStock(c *gin.Context) {
	modelID, _ := strconv.ParseInt(c.Query("model_id"), 10, 64)
	rows, err := h.service.GetStock(c.Request.Context(), modelID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stock": rows})
}

func (h *Handler) Reconcile(c *gin.Context) {
	var req struct {
		ModelID int64 `json:"model_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	rows, err := h.service.ForceReconcile(c.Request.Context(), c.GetInt64("user_id"), req.ModelID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stock": rows})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrStateConflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, ErrModelNotVerified):
		response.Error(c, http.StatusUnprocessableEntity, "MODEL_NOT_VERIFIED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
