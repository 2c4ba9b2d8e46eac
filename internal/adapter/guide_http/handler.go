package guide_http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"weekend-guide/internal/domain"
	"weekend-guide/internal/usecase"
)

// Handler serves the conversational endpoint and the internal reindex
// trigger.
type Handler struct {
	respond usecase.RespondUsecase
	jobRepo domain.EventJobRepository // nil when no vector index is configured
	logger  *slog.Logger
}

// NewHandler wires the HTTP handlers.
func NewHandler(respond usecase.RespondUsecase, jobRepo domain.EventJobRepository, logger *slog.Logger) *Handler {
	return &Handler{
		respond: respond,
		jobRepo: jobRepo,
		logger:  logger,
	}
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type messageResponse struct {
	Reply   string           `json:"reply"`
	Context []map[string]any `json:"context"`
}

// Message answers a free-text query with retrieved events.
// (POST /v1/message)
func (h *Handler) Message(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	style := c.QueryParam("style")
	if style == "" {
		style = "default"
	}

	window, err := parseWindow(c.QueryParam("start_time"), c.QueryParam("end_time"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	query := usecase.Query{SessionID: req.SessionID, Message: req.Message}
	output, err := h.respond.Respond(c.Request().Context(), query, style, window)
	if err != nil {
		var confErr *domain.ConfigurationError
		if errors.As(err, &confErr) {
			h.logger.Error("prompt configuration error", "path", confErr.Path, "error", confErr.Err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "prompt configuration error"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Context must marshal as [] rather than null when empty.
	contexts := output.Context
	if contexts == nil {
		contexts = []map[string]any{}
	}
	return c.JSON(http.StatusOK, messageResponse{Reply: output.Reply, Context: contexts})
}

type reindexRequest struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Reindex enqueues a rebuild of the vector index.
// (POST /internal/events/reindex)
func (h *Handler) Reindex(c echo.Context) error {
	if h.jobRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no vector index configured"})
	}

	var req reindexRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Source == "" {
		req.Source = "synthetic"
	}
	if req.Source != "synthetic" && req.Source != "airtable" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "source must be synthetic or airtable"})
	}
	if req.Count <= 0 {
		req.Count = 200
	}

	now := time.Now()
	job := &domain.IngestJob{
		ID:      uuid.New(),
		JobType: "reindex_events",
		Payload: map[string]any{
			"source": req.Source,
			"count":  req.Count,
		},
		Status:    "new",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.jobRepo.Enqueue(c.Request().Context(), job); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"job_id": job.ID.String(), "status": "queued"})
}

func parseWindow(startRaw, endRaw string) (usecase.TimeWindow, error) {
	var window usecase.TimeWindow
	if startRaw != "" {
		t, err := domain.ParseEventTime(startRaw)
		if err != nil {
			return window, errors.New("invalid start_time")
		}
		window.Start = &t
	}
	if endRaw != "" {
		t, err := domain.ParseEventTime(endRaw)
		if err != nil {
			return window, errors.New("invalid end_time")
		}
		window.End = &t
	}
	return window, nil
}
