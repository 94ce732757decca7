package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aetas/aetas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
	WeekStartDay       string `json:"weekStartDay"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's information and settings
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "User Not Found"
// @Router /api/user/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(&currentUser))
}

// UpdateUser godoc
// @Summary Update current user
// @Description Update the display name and settings of the currently authenticated user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {string} string "Unauthorized"
// @Router /api/user/current [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user")

	var user UserDTO
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	log.Debug("Updating user: ", user)
	if len(user.DisplayName) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Display name is required", "")
		return
	}

	updatedUser, err := h.userService.UpdateUser(r.Context(), dtoToUser(user))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserDataInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
		case errors.Is(err, ErrNoUser):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case errors.Is(err, ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	log.Debug("Updated user: ", updatedUser)

	rest.WriteJSON(w, http.StatusOK, userToDTO(&updatedUser))
}

// DeleteCurrentUser godoc
// @Summary Delete current user
// @Description Delete the current account together with all of its events, modules and notes
// @Tags User
// @Success 204 "No Content"
// @Failure 401 {string} string "Unauthorized"
// @Router /api/user/current [delete]
func (h *Handler) DeleteCurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Deleting current user")

	err := h.userService.DeleteCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(user *User) UserDTO {
	return UserDTO{
		Uid:         user.Uid,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Settings:    settingsToDTO(user.Settings),
	}
}

func settingsToDTO(settings Settings) SettingsDTO {
	return SettingsDTO{
		Theme:              string(settings.Theme),
		EmailNotifications: settings.EmailNotifications,
		PushNotifications:  settings.PushNotifications,
		WeekStartDay:       strings.ToLower(settings.WeekFirstDay.String()),
	}
}

func dtoToUser(userDTO UserDTO) User {
	return User{
		Uid:         userDTO.Uid,
		Email:       userDTO.Email,
		DisplayName: userDTO.DisplayName,
		Settings:    dtoToSettings(userDTO.Settings),
	}
}

func dtoToSettings(settingsDTO SettingsDTO) Settings {
	theme := Theme(settingsDTO.Theme)
	if theme == "" {
		theme = ThemeDark
	}
	return Settings{
		Theme:              theme,
		EmailNotifications: settingsDTO.EmailNotifications,
		PushNotifications:  settingsDTO.PushNotifications,
		WeekFirstDay:       stringToWeekday(settingsDTO.WeekStartDay),
	}
}

func stringToWeekday(day string) time.Weekday {
	switch day {
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	}
	return time.Sunday
}
