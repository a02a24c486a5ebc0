package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/domain"
	"github.com/absarsolarch/ab-3/internal/repository"
	"github.com/absarsolarch/ab-3/internal/service"
	"github.com/absarsolarch/ab-3/internal/session"
)

// Success messages returned for the three write actions.
const (
	msgCreated = "Property listed successfully!"
	msgUpdated = "Property status updated successfully!"
	msgDeleted = "Property listing removed successfully!"
	msgCleared = "Database cleared"

	errDBDown  = "Database connection failed"
	errGeneric = "An error occurred while processing your request."
)

// PropertyHandler is the data tier's request handler. Writes run through
// validate → persist → acknowledge; reads map straight onto the gateway.
//
// The repository handle is selected once at startup; when it is nil the whole
// data tier is down and every operation short-circuits to a failure result.
type PropertyHandler struct {
	repo        repository.PropertiesRepository
	backend     repository.Backend
	dispatcher  *service.CallbackDispatcher
	flash       *session.Store
	frontendURL string
	debug       bool
	logger      *zap.Logger
}

func NewPropertyHandler(
	repo repository.PropertiesRepository,
	backend repository.Backend,
	dispatcher *service.CallbackDispatcher,
	flash *session.Store,
	frontendURL string,
	debug bool,
	logger *zap.Logger,
) *PropertyHandler {
	return &PropertyHandler{
		repo:        repo,
		backend:     backend,
		dispatcher:  dispatcher,
		flash:       flash,
		frontendURL: frontendURL,
		debug:       debug,
		logger:      logger,
	}
}

func (h *PropertyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleWrite(w, r)
	case http.MethodGet:
		h.handleRead(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// writeError carries the failure classification through the write flow.
type writeError struct {
	msg    string // user-visible (debug) message
	client bool   // true: caller's fault, false: backend fault
}

func (e *writeError) Error() string { return e.msg }

func clientErr(msg string) *writeError { return &writeError{msg: msg, client: true} }
func serverErr(msg string) *writeError { return &writeError{msg: msg} }

// handleWrite drives one write request from parse to acknowledgment. The
// completion mode is decided by the presence of callback_url: without one the
// outcome lands in the session flash and the caller is redirected to the
// listing page; with one the outcome is pushed to the callback address and
// the caller gets a redirect or an inline JSON body.
func (h *PropertyHandler) handleWrite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.acknowledge(w, r, "", clientErr("invalid form body"))
		return
	}

	callbackURL := r.PostFormValue("callback_url")

	message, err := h.persist(r)
	if err != nil {
		h.logger.Warn("write request failed",
			zap.String("action", r.PostFormValue("action")),
			zap.Error(err),
		)
	}

	// The response decision is finalized before dispatch; callback delivery
	// can no longer change it.
	if callbackURL != "" {
		h.dispatcher.DispatchAsync(callbackURL, outcomeOf(message, err, h.debug))
	}
	h.acknowledge(w, r, message, err)
}

// persist validates the action and applies it through the gateway.
func (h *PropertyHandler) persist(r *http.Request) (string, *writeError) {
	if h.repo == nil {
		return "", serverErr(errDBDown)
	}

	ctx := r.Context()
	switch action := r.PostFormValue("action"); action {
	case "create":
		p, err := propertyFromForm(r)
		if err != nil {
			return "", clientErr(err.Error())
		}
		if _, err := h.repo.Create(ctx, p); err != nil {
			return "", serverErr(err.Error())
		}
		return msgCreated, nil

	case "update":
		id, err := formID(r)
		if err != nil {
			return "", clientErr(err.Error())
		}
		status := r.PostFormValue("status")
		if !domain.ValidStatus(status) {
			return "", clientErr("status must be one of Available, Under Contract, Sold")
		}
		if err := h.repo.UpdateStatus(ctx, id, status); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", clientErr("property not found")
			}
			return "", serverErr(err.Error())
		}
		return msgUpdated, nil

	case "delete":
		id, err := formID(r)
		if err != nil {
			return "", clientErr(err.Error())
		}
		if err := h.repo.Delete(ctx, id); err != nil {
			return "", serverErr(err.Error())
		}
		return msgDeleted, nil

	default:
		return "", clientErr("action must be one of create, update, delete")
	}
}

// acknowledge finishes the write in exactly one of the two completion modes.
func (h *PropertyHandler) acknowledge(w http.ResponseWriter, r *http.Request, message string, werr *writeError) {
	callbackURL := r.PostFormValue("callback_url")
	redirectURL := r.PostFormValue("redirect_url")

	if callbackURL == "" {
		// Direct mode: outcome goes into the session flash, caller returns to
		// the listing page.
		sid := session.SessionID(w, r)
		f := session.Flash{Message: message}
		if werr != nil {
			f = session.Flash{Error: h.userMessage(werr)}
		}
		if err := h.flash.Put(r.Context(), sid, f); err != nil {
			h.logger.Warn("failed to store flash message", zap.Error(err))
		}
		http.Redirect(w, r, h.frontendURL, http.StatusFound)
		return
	}

	if redirectURL != "" {
		http.Redirect(w, r, redirectURL, http.StatusFound)
		return
	}

	if werr != nil {
		status := http.StatusInternalServerError
		if werr.client {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{
			"status": "error",
			"error":  h.userMessage(werr),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// userMessage hides backend detail unless debug mode is on. Validation
// messages are always safe to show.
func (h *PropertyHandler) userMessage(werr *writeError) string {
	if werr.client || h.debug {
		return werr.msg
	}
	return errGeneric
}

func outcomeOf(message string, werr *writeError, debug bool) service.Outcome {
	if werr != nil {
		msg := werr.msg
		if !werr.client && !debug {
			msg = errGeneric
		}
		return service.Outcome{Error: msg}
	}
	return service.Outcome{Message: message}
}

// handleRead maps GET requests directly onto the gateway.
func (h *PropertyHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("test") {
		h.handleTest(w, r)
		return
	}

	switch q.Get("api") {
	case "health":
		h.handleHealth(w)
		return
	case "":
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown API endpoint"})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errDBDown})
		return
	}

	ctx := r.Context()
	switch q.Get("api") {
	case "properties":
		properties, err := h.repo.List(ctx)
		if err != nil {
			h.apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, properties)

	case "property":
		idStr := q.Get("id")
		if idStr == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Property ID required"})
			return
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Property ID required"})
			return
		}
		p, err := h.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Property not found"})
				return
			}
			h.apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case "clear":
		if err := h.repo.Clear(ctx); err != nil {
			h.apiError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": msgCleared,
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown API endpoint"})
	}
}

func (h *PropertyHandler) handleHealth(w http.ResponseWriter) {
	status := "healthy"
	if h.repo == nil {
		status = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"db_connected": h.repo != nil,
		"backend":      h.backend.String(),
		"timestamp":    time.Now().UTC().Format(domain.TimeLayout),
	})
}

// handleTest returns a diagnostic snapshot.
func (h *PropertyHandler) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"message":      "Backend is functioning correctly",
		"db_connected": h.repo != nil,
		"backend":      h.backend.String(),
		"go_version":   runtime.Version(),
		"server_time":  time.Now().UTC().Format(domain.TimeLayout),
	})
}

func (h *PropertyHandler) apiError(w http.ResponseWriter, err error) {
	h.logger.Error("api request failed", zap.Error(err))
	msg := "API error"
	if h.debug {
		msg = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

func propertyFromForm(r *http.Request) (*domain.Property, error) {
	sizeSqft, err := formInt(r, "size_sqft", true)
	if err != nil {
		return nil, err
	}
	bedrooms, err := formOptionalInt(r, "bedrooms")
	if err != nil {
		return nil, err
	}
	bathrooms, err := formOptionalInt(r, "bathrooms")
	if err != nil {
		return nil, err
	}

	p := &domain.Property{
		Title:        r.PostFormValue("title"),
		PropertyType: r.PostFormValue("property_type"),
		Price:        r.PostFormValue("price"),
		SizeSqft:     sizeSqft,
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		Location:     r.PostFormValue("location"),
		Status:       r.PostFormValue("status"),
		Description:  r.PostFormValue("description"),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func formID(r *http.Request) (int64, error) {
	idStr := r.PostFormValue("id")
	if idStr == "" {
		return 0, errors.New("id is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

func formInt(r *http.Request, field string, required bool) (int64, error) {
	v := r.PostFormValue(field)
	if v == "" {
		if required {
			return 0, errors.New(field + " is required")
		}
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.New(field + " must be an integer")
	}
	return n, nil
}

// formOptionalInt returns nil for an absent field, so optional counts are
// stored as absent rather than zero.
func formOptionalInt(r *http.Request, field string) (*int64, error) {
	v := r.PostFormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, errors.New(field + " must be an integer")
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
