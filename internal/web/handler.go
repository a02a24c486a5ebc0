// Package web is the presentation tier: it renders the listing page off the
// data tier's read API and receives write outcomes on /callback. It holds no
// state of its own beyond the shared session flash store.
package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/service"
	"github.com/absarsolarch/ab-3/internal/session"
)

type Handler struct {
	client   *service.ListingClient
	flash    *session.Store
	endpoint string // data-tier base URL, used as the form target
	logger   *zap.Logger
}

func NewHandler(client *service.ListingClient, flash *session.Store, endpoint string, logger *zap.Logger) *Handler {
	return &Handler{
		client:   client,
		flash:    flash,
		endpoint: endpoint,
		logger:   logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/callback", h.Callback)
}

// Index renders the property listing. A dead data tier renders as an empty
// listing with a "tier unavailable" notice, never an error page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sid := session.SessionID(w, r)
	flash, err := h.flash.Pop(r.Context(), sid)
	if err != nil {
		h.logger.Warn("failed to read flash message", zap.Error(err))
	}

	properties := h.client.FetchAll(r.Context())
	connected := h.client.Healthy(r.Context())

	data := listingData{
		Properties: properties,
		Connected:  connected,
		Message:    flash.Message,
		Error:      flash.Error,
		Endpoint:   h.endpoint,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render listing page", zap.Error(err))
	}
}

// Callback receives a write outcome pushed by the data tier, stores it as the
// caller's flash and always returns to the listing page.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var outcome struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		h.logger.Warn("invalid callback payload", zap.Error(err))
	}

	sid := session.SessionID(w, r)
	f := session.Flash{Message: outcome.Message, Error: outcome.Error}
	if f.Message != "" || f.Error != "" {
		if err := h.flash.Put(r.Context(), sid, f); err != nil {
			h.logger.Warn("failed to store flash message", zap.Error(err))
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
