package audit

import (
	"net/http"
	"strconv"

	"labstock/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity/:entity_type/:entity_id", h.ListForEntity)
}

func (h *Handler) ListForEntity(c *gin.Context) {
	entityID, err := strconv.ParseInt(c.Param("entity_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid entity ID")
		return
	}
	logs, err := h.recorder.ListForEntity(c.Request.Context(), c.Param("entity_type"), entityID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": logs})
}
