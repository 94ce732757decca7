package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar Service
}

func NewHandler(s Service) *Handler {
	return &Handler{calendar: s}
}

type completedDTO struct {
	Completed bool `json:"completed"`
}

type importResultDTO struct {
	Imported []EventDTO `json:"imported"`
	Skipped  int        `json:"skipped"`
}

// GetEvents godoc
// @Summary List stored events
// @Description Returns every stored event of the current user, recurring templates included
// @Tags Calendar
// @Produce json
// @Success 200 {array} EventDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /api/calendar/event [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting stored events")

	events, err := h.calendar.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventsToDTO(events))
}

// GetOccurrences godoc
// @Summary List occurrences in a window
// @Description Returns singletons and expanded occurrences of recurring events starting within [from, to]
// @Tags Calendar
// @Produce json
// @Param from query string true "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339), defaults to the configured horizon"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/calendar/occurrences [get]
func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r, "from", true)
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to", false)
	if !ok {
		return
	}

	events, err := h.calendar.Occurrences(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventsToDTO(events))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/calendar/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Tracef("Creating event: %+v", eventDTO)

	created, err := h.calendar.CreateEvent(r.Context(), DTOToEvent(eventDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, EventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param eventId path string true "Event id"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Failure 409 {object} rest.ErrorResponse "Recurring instance"
// @Router /api/calendar/event/{eventId} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	eventDTO.Id = mux.Vars(r)["eventId"]

	updated, err := h.calendar.UpdateEvent(r.Context(), DTOToEvent(eventDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(updated))
}

// SetCompleted godoc
// @Summary Mark an event completed or not
// @Tags Calendar
// @Accept json
// @Produce json
// @Param eventId path string true "Event id"
// @Param completed body completedDTO true "Completed flag"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/calendar/event/{eventId}/completed [patch]
func (h *Handler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	var body completedDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	updated, err := h.calendar.SetCompleted(r.Context(), mux.Vars(r)["eventId"], body.Completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Calendar
// @Param eventId path string true "Event id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/calendar/event/{eventId} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Deleting event %s", eventId)

	if err := h.calendar.DeleteEvent(r.Context(), eventId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetView godoc
// @Summary Get a calendar view model
// @Description Day, week and month views are built around the given date; the list view around now
// @Tags Calendar
// @Produce json
// @Param kind path string true "day, week, month or list"
// @Param date query string false "Reference date (RFC3339), defaults to now"
// @Success 200 {object} object
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Failure 404 {object} rest.ErrorResponse "Unknown view"
// @Router /api/calendar/view/{kind} [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r, "date", false)
	if !ok {
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	ctx := r.Context()
	var body any
	var err error
	switch kind := mux.Vars(r)["kind"]; kind {
	case "day":
		var v DayView
		v, err = h.calendar.DayView(ctx, date)
		body = DayViewToDTO(v)
	case "week":
		var v WeekView
		v, err = h.calendar.WeekView(ctx, date)
		body = WeekViewToDTO(v)
	case "month":
		var v MonthView
		v, err = h.calendar.MonthView(ctx, date)
		body = MonthViewToDTO(v)
	case "list":
		var v Buckets
		v, err = h.calendar.ListView(ctx)
		body = BucketsToDTO(v)
	default:
		rest.WriteError(w, http.StatusNotFound, "Unknown view", fmt.Sprintf("view %q does not exist", kind))
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, body)
}

// ExportFeed godoc
// @Summary Export events as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Success 200 {string} string "iCalendar document"
// @Router /api/calendar/feed.ics [get]
func (h *Handler) ExportFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.calendar.ExportICS(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="aetas.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}

// ImportFeed godoc
// @Summary Import events from an iCalendar document
// @Tags Calendar
// @Accept text/calendar
// @Produce json
// @Success 201 {object} importResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid calendar"
// @Router /api/calendar/import [post]
func (h *Handler) ImportFeed(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	result, err := h.calendar.ImportICS(r.Context(), r.Body)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			writeServiceError(w, err)
			return
		}
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusCreated, importResultDTO{Imported: EventsToDTO(result.Events), Skipped: result.Skipped})
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string, required bool) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" && !required {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s (date) format", name),
			fmt.Sprintf("'%s' must be in RFC3339 format", name))
		return time.Time{}, false
	}
	return t, true
}

// writeServiceError maps calendar errors to responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrInvalidRecurrence), errors.Is(err, ErrInvalidWindow):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrRecurringInstance):
		rest.WriteError(w, http.StatusConflict, "Recurring instance", "change the recurring event itself")
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
