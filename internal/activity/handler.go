package activity

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/buket/service/internal/response"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Lister returns recent events.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Handler serves the activity log.
type Handler struct {
	events Lister
	log    *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(events Lister, log *zap.Logger) *Handler {
	return &Handler{events: events, log: log}
}

type listResponse struct {
	Total  int     `json:"total"`
	Events []Event `json:"events"`
}

// List godoc
//
//	@Summary		Recent activity
//	@Description	Returns the newest upload, replace and delete events. Only mounted when a database is configured.
//	@Tags			activity
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of events (1-500, default 50)"
//	@Success		200		{object}	listResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/activity [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			response.BadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.events.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error("list activity", zap.Error(err))
		response.InternalError(w, err.Error())
		return
	}
	if events == nil {
		events = []Event{}
	}
	response.OK(w, listResponse{Total: len(events), Events: events})
}
