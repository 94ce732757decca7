package app

import (
	"net/http"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/rest"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints, the media files and the frontend.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Auth
	r.HandleFunc("/api/auth/google/login", deps.AuthHandler.GoogleLogin).Methods("GET")
	r.HandleFunc("/api/auth/google/callback", deps.AuthHandler.GoogleCallback).Methods("GET")
	r.HandleFunc("/api/auth/session", deps.AuthHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/auth/session", deps.AuthHandler.DeleteSession).Methods("DELETE")

	// User
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/current", deps.UserHandler.DeleteCurrentUser).Methods("DELETE")

	// Calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventId}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventId}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/event/{eventId}/completed", deps.CalendarHandler.SetCompleted).Methods("PATCH")
	r.HandleFunc("/api/calendar/occurrences", deps.CalendarHandler.GetOccurrences).Methods("GET")
	r.HandleFunc("/api/calendar/view/{kind}", deps.CalendarHandler.GetView).Methods("GET")
	r.HandleFunc("/api/calendar/feed.ics", deps.CalendarHandler.ExportFeed).Methods("GET")
	r.HandleFunc("/api/calendar/import", deps.CalendarHandler.ImportFeed).Methods("POST")

	// Modules
	r.HandleFunc("/api/module", deps.ModuleHandler.GetModules).Methods("GET")
	r.HandleFunc("/api/module", deps.ModuleHandler.CreateModule).Methods("POST")
	r.HandleFunc("/api/module/overview", deps.ModuleHandler.GetOverview).Methods("GET")
	r.HandleFunc("/api/module/{moduleId}", deps.ModuleHandler.UpdateModule).Methods("PUT")
	r.HandleFunc("/api/module/{moduleId}", deps.ModuleHandler.DeleteModule).Methods("DELETE")

	// Notes
	r.HandleFunc("/api/note", deps.NoteHandler.GetNotes).Methods("GET")
	r.HandleFunc("/api/note", deps.NoteHandler.CreateNote).Methods("POST")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.GetNote).Methods("GET")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.UpdateNote).Methods("PUT")
	r.HandleFunc("/api/note/{noteId}", deps.NoteHandler.DeleteNote).Methods("DELETE")
	r.HandleFunc("/api/note/{noteId}/image", deps.NoteHandler.UploadImage).Methods("POST")

	// Assistant
	r.HandleFunc("/api/assistant/chat", deps.AssistantHandler.Chat).Methods("POST")
	r.HandleFunc("/api/assistant/search", deps.AssistantHandler.SearchNotes).Methods("POST")

	// Live view
	r.HandleFunc("/api/live/view", deps.LiveHandler.Stream).Methods("GET")
	r.HandleFunc("/api/live/event", deps.LiveHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/live/event/{eventId}", deps.LiveHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/live/event/{eventId}", deps.LiveHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/live/event/{eventId}/completed", deps.LiveHandler.SetCompleted).Methods("PATCH")

	// Uploaded media
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(deps.Storage.Dir()))))

	// Frontend
	if cfg.Frontend.Enabled {
		r.PathPrefix("/").Handler(rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html"))
	}
}
