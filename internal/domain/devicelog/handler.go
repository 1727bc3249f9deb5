package devicelog

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cirozov-cmyk/device-logs-tile/pkg/response"
)

// Manifest describes the tile to the dashboard.
type Manifest struct {
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Version         string            `json:"version"`
	RefreshInterval int               `json:"refresh_interval"`
	Endpoints       map[string]string `json:"endpoints"`
}

// Handler exposes tile, log and health endpoints.
type Handler struct {
	service         *Service
	refreshInterval int
	sourceName      string
	manifest        Manifest
}

// NewHandler returns handler.
func NewHandler(service *Service, manifest Manifest, sourceName string) *Handler {
	if manifest.RefreshInterval <= 0 {
		manifest.RefreshInterval = 10
	}
	manifest.Endpoints = map[string]string{
		"tile":   "/api/v1/tile",
		"logs":   "/api/v1/logs",
		"health": "/api/v1/health",
	}
	return &Handler{
		service:         service,
		refreshInterval: manifest.RefreshInterval,
		sourceName:      sourceName,
		manifest:        manifest,
	}
}

// RegisterRoutes mounts the tile API.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/manifest", h.getManifest)
	rg.GET("/tile", h.tile)
	rg.GET("/logs", h.list)
	rg.POST("/logs", h.record)
	rg.DELETE("/logs", h.clear)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"logs":     h.service.Size(),
		"capacity": h.service.Capacity(),
		"source":   h.sourceName,
	})
}

func (h *Handler) getManifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.manifest)
}

func (h *Handler) tile(c *gin.Context) {
	fragment, updated, err := h.service.Tile()
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	var updatedAt *string
	if !updated.IsZero() {
		s := updated.Format(time.RFC3339)
		updatedAt = &s
	}
	c.JSON(http.StatusOK, gin.H{
		"html":             fragment,
		"refresh_interval": h.refreshInterval,
		"updated_at":       updatedAt,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit := response.GetLimit(c, 0, h.service.Capacity())
	logs, total := h.service.List(limit)
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
}

func (h *Handler) record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	entry, err := h.service.Record(req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) clear(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": h.service.Clear()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		response.FieldError(c, "message", "required")
	default:
		response.ValidationError(c, err)
	}
}
