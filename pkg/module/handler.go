package module

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ModuleDTO struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Color string `json:"color"`
}

type ModuleTasksDTO struct {
	Module   ModuleDTO           `json:"module"`
	Upcoming []calendar.EventDTO `json:"upcoming"`
	Count    int                 `json:"count"`
}

type OverviewDTO struct {
	Modules []ModuleTasksDTO    `json:"modules"`
	Others  []calendar.EventDTO `json:"others"`
}

type Handler struct {
	moduleService Service
}

func NewHandler(moduleService Service) *Handler {
	return &Handler{moduleService: moduleService}
}

// GetModules godoc
// @Summary List modules
// @Tags Module
// @Produce json
// @Success 200 {array} ModuleDTO
// @Failure 401 {string} string "Unauthorized"
// @Router /api/module [get]
func (h *Handler) GetModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.moduleService.ListModules(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]ModuleDTO, 0, len(modules))
	for _, m := range modules {
		dtos = append(dtos, moduleToDTO(m))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateModule godoc
// @Summary Create a module
// @Tags Module
// @Accept json
// @Produce json
// @Param module body ModuleDTO true "Module"
// @Success 201 {object} ModuleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid module"
// @Router /api/module [post]
func (h *Handler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var dto ModuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Creating module: %+v", dto)

	created, err := h.moduleService.CreateModule(r.Context(), dtoToModule(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, moduleToDTO(created))
}

// UpdateModule godoc
// @Summary Update a module
// @Tags Module
// @Accept json
// @Produce json
// @Param moduleId path string true "Module id"
// @Param module body ModuleDTO true "Module"
// @Success 200 {object} ModuleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid module"
// @Failure 404 {object} rest.ErrorResponse "Module not found"
// @Router /api/module/{moduleId} [put]
func (h *Handler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var dto ModuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.Id = mux.Vars(r)["moduleId"]

	updated, err := h.moduleService.UpdateModule(r.Context(), dtoToModule(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, moduleToDTO(updated))
}

// DeleteModule godoc
// @Summary Delete a module
// @Description Events and notes of the module are kept and lose their module
// @Tags Module
// @Param moduleId path string true "Module id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Module not found"
// @Router /api/module/{moduleId} [delete]
func (h *Handler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	moduleId := mux.Vars(r)["moduleId"]
	log.Debugf("Deleting module %s", moduleId)

	if err := h.moduleService.DeleteModule(r.Context(), moduleId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOverview godoc
// @Summary Upcoming tasks per module
// @Tags Module
// @Produce json
// @Success 200 {object} OverviewDTO
// @Router /api/module/overview [get]
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.moduleService.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, OverviewToDTO(overview))
}

func OverviewToDTO(o Overview) OverviewDTO {
	dto := OverviewDTO{Modules: make([]ModuleTasksDTO, 0, len(o.Modules)), Others: calendar.EventsToDTO(o.Others)}
	for _, m := range o.Modules {
		dto.Modules = append(dto.Modules, ModuleTasksDTO{
			Module:   moduleToDTO(m.Module),
			Upcoming: calendar.EventsToDTO(m.Upcoming),
			Count:    len(m.Upcoming),
		})
	}
	return dto
}

func moduleToDTO(m Module) ModuleDTO {
	return ModuleDTO{Id: m.Id, Name: m.Name, Code: m.Code, Color: m.Color}
}

func dtoToModule(dto ModuleDTO) Module {
	return Module{Id: dto.Id, Name: dto.Name, Code: dto.Code, Color: dto.Color}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, ErrModuleNotFound):
		rest.WriteError(w, http.StatusNotFound, "Module not found", "")
	case errors.Is(err, ErrInvalidModule):
		rest.WriteError(w, http.StatusBadRequest, "Invalid module", err.Error())
	default:
		log.Errorf("module request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
