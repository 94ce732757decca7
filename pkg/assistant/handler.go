package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/user"
	log "github.com/sirupsen/logrus"
)

type ChatRequestDTO struct {
	Message string `json:"message"`
}

type SearchRequestDTO struct {
	Query string `json:"query"`
}

type ResponseDTO struct {
	Response string `json:"response"`
}

type Handler struct {
	assistantService Service
}

func NewHandler(assistantService Service) *Handler {
	return &Handler{assistantService: assistantService}
}

// Chat godoc
// @Summary Ask the assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body ChatRequestDTO true "Message"
// @Success 200 {object} ResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Message is required"
// @Failure 401 {object} rest.ErrorResponse "Unauthorized"
// @Failure 500 {object} rest.ErrorResponse "Failed to get response from AI service"
// @Router /api/assistant/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var dto ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Message is required", err.Error())
		return
	}
	log.Debug("Assistant chat request")

	answer, err := h.assistantService.Chat(r.Context(), dto.Message)
	if err != nil {
		writeServiceError(w, err, "Message is required")
		return
	}
	rest.WriteJSON(w, http.StatusOK, ResponseDTO{Response: answer})
}

// SearchNotes godoc
// @Summary Ask the assistant about the user's notes
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body SearchRequestDTO true "Query"
// @Success 200 {object} ResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Query is required"
// @Failure 500 {object} rest.ErrorResponse "Failed to get response from AI service"
// @Router /api/assistant/search [post]
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	var dto SearchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Query is required", err.Error())
		return
	}
	log.Debug("Assistant notes search request")

	answer, err := h.assistantService.SearchNotes(r.Context(), dto.Query)
	if err != nil {
		writeServiceError(w, err, "Query is required")
		return
	}
	rest.WriteJSON(w, http.StatusOK, ResponseDTO{Response: answer})
}

func writeServiceError(w http.ResponseWriter, err error, emptyMessage string) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, ErrEmptyPrompt):
		rest.WriteError(w, http.StatusBadRequest, emptyMessage, "")
	case errors.Is(err, ErrNotConfigured):
		rest.WriteError(w, http.StatusInternalServerError, "API key not configured", "")
	default:
		log.Errorf("assistant request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to get response from AI service", "")
	}
}
