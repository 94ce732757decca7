package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/user"
	"github.com/aetas/aetas/pkg/workspace"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const keepAliveInterval = 25 * time.Second

type completedDTO struct {
	Completed bool `json:"completed"`
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Stream godoc
// @Summary Live view stream
// @Description Server-Sent Events. Every "snapshot" event carries the current list view and module overview.
// @Tags Live
// @Produce text/event-stream
// @Success 200 {object} SnapshotDTO
// @Failure 401 {object} rest.ErrorResponse "Unauthorized"
// @Router /api/live/view [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		rest.WriteError(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}

	sub, err := h.hub.Subscribe(r.Context(), userId)
	if err != nil {
		log.Errorf("failed to subscribe user %d: %v", userId, err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load live view", "")
		return
	}
	defer h.hub.Unsubscribe(sub)

	// the server's write timeout would cut the stream
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debugf("could not clear write deadline of live stream: %v", err)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			log.Debugf("live stream of user %d closed", userId)
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snapshot := <-sub.Updates():
			data, err := json.Marshal(SnapshotToDTO(snapshot))
			if err != nil {
				log.Errorf("failed to encode snapshot: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// CreateEvent godoc
// @Summary Create an event through the live workspace
// @Description Subscribers see the event immediately, marked pending until storage confirms it
// @Tags Live
// @Accept json
// @Produce json
// @Param event body calendar.EventDTO true "Event"
// @Success 201 {object} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/live/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto calendar.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	ws, release, ok := h.workspace(w, r)
	if !ok {
		return
	}
	defer release()

	created, err := ws.CreateEvent(r.Context(), calendar.DTOToEvent(dto))
	if err != nil {
		writeIntentError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, calendar.EventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update an event through the live workspace
// @Tags Live
// @Accept json
// @Produce json
// @Param eventId path string true "Event id"
// @Param event body calendar.EventDTO true "Event"
// @Success 200 {object} calendar.EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Failure 409 {object} rest.ErrorResponse "Recurring instance"
// @Router /api/live/event/{eventId} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto calendar.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.Id = mux.Vars(r)["eventId"]
	ws, release, ok := h.workspace(w, r)
	if !ok {
		return
	}
	defer release()

	updated, err := ws.UpdateEvent(r.Context(), calendar.DTOToEvent(dto))
	if err != nil {
		writeIntentError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventToDTO(updated))
}

// SetCompleted godoc
// @Summary Mark an event or a single occurrence completed
// @Description Occurrence completion is kept in the live workspace only
// @Tags Live
// @Accept json
// @Produce json
// @Param eventId path string true "Event or occurrence id"
// @Param completed body completedDTO true "Completed flag"
// @Success 200 {object} calendar.EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/live/event/{eventId}/completed [patch]
func (h *Handler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	var body completedDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	ws, release, ok := h.workspace(w, r)
	if !ok {
		return
	}
	defer release()

	updated, err := ws.SetCompleted(r.Context(), mux.Vars(r)["eventId"], body.Completed)
	if err != nil {
		writeIntentError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete an event through the live workspace
// @Tags Live
// @Param eventId path string true "Event id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/live/event/{eventId} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ws, release, ok := h.workspace(w, r)
	if !ok {
		return
	}
	defer release()
	if err := ws.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeIntentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, func(), bool) {
	ws, release, err := h.hub.Workspace(r.Context())
	if err != nil {
		writeIntentError(w, err)
		return nil, nil, false
	}
	return ws, release, true
}

func writeIntentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, calendar.ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, calendar.ErrInvalidEvent), errors.Is(err, calendar.ErrInvalidRecurrence):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, calendar.ErrRecurringInstance):
		rest.WriteError(w, http.StatusConflict, "Recurring instance", "change the recurring event itself")
	default:
		log.Errorf("live change failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Could not save the change", err.Error())
	}
}
