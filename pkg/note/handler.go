package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/storage"
	"github.com/aetas/aetas/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxMultipartMemory = 10 << 20

type NoteDTO struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ModuleId  *string   `json:"moduleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ImageDTO struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

type Handler struct {
	noteService Service
	uploader    storage.Uploader
}

func NewHandler(noteService Service, uploader storage.Uploader) *Handler {
	return &Handler{noteService: noteService, uploader: uploader}
}

// GetNotes godoc
// @Summary List notes
// @Description Most recently updated first
// @Tags Note
// @Produce json
// @Success 200 {array} NoteDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /api/note [get]
func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.ListNotes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		dtos = append(dtos, noteToDTO(n))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetNote godoc
// @Summary Get a note
// @Tags Note
// @Produce json
// @Param noteId path string true "Note id"
// @Success 200 {object} NoteDTO
// @Failure 404 {object} rest.ErrorResponse "Note not found"
// @Router /api/note/{noteId} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.GetNote(r.Context(), mux.Vars(r)["noteId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, noteToDTO(note))
}

// CreateNote godoc
// @Summary Create a note
// @Description An empty body creates an empty "Untitled" note
// @Tags Note
// @Accept json
// @Produce json
// @Param note body NoteDTO false "Note"
// @Success 201 {object} NoteDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request body format"
// @Router /api/note [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Creating note: %s", dto.Title)

	created, err := h.noteService.CreateNote(r.Context(), dtoToNote(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, noteToDTO(created))
}

// UpdateNote godoc
// @Summary Update a note
// @Tags Note
// @Accept json
// @Produce json
// @Param noteId path string true "Note id"
// @Param note body NoteDTO true "Note"
// @Success 200 {object} NoteDTO
// @Failure 404 {object} rest.ErrorResponse "Note not found"
// @Router /api/note/{noteId} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.Id = mux.Vars(r)["noteId"]

	updated, err := h.noteService.UpdateNote(r.Context(), dtoToNote(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, noteToDTO(updated))
}

// DeleteNote godoc
// @Summary Delete a note
// @Tags Note
// @Param noteId path string true "Note id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Note not found"
// @Router /api/note/{noteId} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteId := mux.Vars(r)["noteId"]
	log.Debugf("Deleting note %s", noteId)

	if err := h.noteService.DeleteNote(r.Context(), noteId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Upload an image for a note
// @Description Stores the image and returns its public URL with a markdown snippet to embed it
// @Tags Note
// @Accept multipart/form-data
// @Produce json
// @Param noteId path string true "Note id"
// @Param image formData file true "Image"
// @Success 201 {object} ImageDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid image"
// @Failure 404 {object} rest.ErrorResponse "Note not found"
// @Failure 413 {object} rest.ErrorResponse "Image too large"
// @Router /api/note/{noteId}/image [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	noteId := mux.Vars(r)["noteId"]
	if _, err := h.noteService.GetNote(r.Context(), noteId); err != nil {
		writeServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid image", err.Error())
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid image", err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid image", err.Error())
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	log.Debugf("Uploading image %s (%s, %d bytes) for note %s", header.Filename, contentType, len(data), noteId)

	url, err := h.uploader.Upload(r.Context(), data, contentType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ImageDTO{
		URL:      url,
		Markdown: fmt.Sprintf("![%s](%s)", header.Filename, url),
	})
}

func noteToDTO(n Note) NoteDTO {
	var moduleId *string
	if n.ModuleId != NoModule {
		id := n.ModuleId
		moduleId = &id
	}
	return NoteDTO{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		ModuleId:  moduleId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func dtoToNote(dto NoteDTO) Note {
	n := Note{Id: dto.Id, Title: dto.Title, Content: dto.Content}
	if dto.ModuleId != nil {
		n.ModuleId = *dto.ModuleId
	}
	return n
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, ErrNoteNotFound):
		rest.WriteError(w, http.StatusNotFound, "Note not found", "")
	case errors.Is(err, storage.ErrUnsupportedContentType):
		rest.WriteError(w, http.StatusBadRequest, "Invalid image", err.Error())
	case errors.Is(err, storage.ErrTooLarge):
		rest.WriteError(w, http.StatusRequestEntityTooLarge, "Image too large", err.Error())
	default:
		log.Errorf("note request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
