package note

import (
	"errors"
	"strings"
	"time"
)

var ErrNoteNotFound = errors.New("note not found")

const DefaultTitle = "Untitled"

// NoModule is the ModuleId of a note that does not belong to any module.
const NoModule = ""

type Note struct {
	Id        string
	Title     string
	Content   string
	ModuleId  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Note) WithDefaults() Note {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	return n
}
