package module

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrInvalidModule  = errors.New("invalid module")
)

const DefaultColor = "#9333ea"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Module groups events and notes, typically a course or a project.
type Module struct {
	Id    string
	Name  string
	Code  string
	Color string
}

func (m Module) WithDefaults() Module {
	m.Name = strings.TrimSpace(m.Name)
	m.Code = strings.TrimSpace(m.Code)
	if m.Color == "" {
		m.Color = DefaultColor
	}
	return m
}

func (m Module) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidModule)
	}
	if !colorPattern.MatchString(m.Color) {
		return fmt.Errorf("%w: color %q is not a #rrggbb value", ErrInvalidModule, m.Color)
	}
	return nil
}

// Label renders the module the way it is shown next to notes: "[code] name", or just the name
// without a code.
func (m Module) Label() string {
	if m.Code == "" {
		return m.Name
	}
	return "[" + m.Code + "] " + m.Name
}
