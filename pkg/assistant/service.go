package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/note"
	"github.com/aetas/aetas/pkg/user"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

const (
	ChatMaxTokens   = 2048
	SearchMaxTokens = 1000

	chatSystemPrompt = "You are einstein, a helpful AI assistant for students. Provide concise, accurate answers " +
		"in markdown format. Include code examples when relevant. Be friendly and educational."
	searchSystemPrompt = "You are Einstein, a helpful AI assistant for students. You provide concise, informative " +
		"answers in markdown format."
)

type Service interface {
	Chat(ctx context.Context, message string) (string, error)
	SearchNotes(ctx context.Context, query string) (string, error)
}

type NoteLister interface {
	ListNotes(ctx context.Context) ([]note.Note, error)
}

type ModuleLister interface {
	ListModules(ctx context.Context) ([]module.Module, error)
}

type ServiceImpl struct {
	client  Completer
	notes   NoteLister
	modules ModuleLister
}

func NewService(client Completer, notes NoteLister, modules ModuleLister) *ServiceImpl {
	return &ServiceImpl{client: client, notes: notes, modules: modules}
}

func (s *ServiceImpl) Chat(ctx context.Context, message string) (string, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyPrompt
	}
	return s.client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: chatSystemPrompt},
		{Role: RoleUser, Content: message},
	}, ChatMaxTokens)
}

// SearchNotes answers the query with every note of the user embedded in the prompt.
func (s *ServiceImpl) SearchNotes(ctx context.Context, query string) (string, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyPrompt
	}
	notes, err := s.notes.ListNotes(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get notes: %w", err)
	}
	modules, err := s.modules.ListModules(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get modules: %w", err)
	}

	return s.client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: searchSystemPrompt},
		{Role: RoleUser, Content: SearchPrompt(FormatNotes(notes, modules), query)},
	}, SearchMaxTokens)
}

// FormatNotes renders notes as blocks headed by their title and module label.
func FormatNotes(notes []note.Note, modules []module.Module) string {
	byId := make(map[string]module.Module, len(modules))
	for _, m := range modules {
		byId[m.Id] = m
	}
	var b strings.Builder
	for _, n := range notes {
		label := "No Module"
		if m, ok := byId[n.ModuleId]; ok {
			label = fmt.Sprintf("[%s] %s", m.Code, m.Name)
		}
		fmt.Fprintf(&b, "--- Note: %s (%s) ---\n%s\n\n", n.Title, label, n.Content)
	}
	return b.String()
}

func SearchPrompt(formattedNotes, query string) string {
	var b strings.Builder
	b.WriteString("You are Einstein, a helpful AI assistant for students. ")
	b.WriteString("You're knowledgeable, friendly, and provide concise answers.\n")
	if formattedNotes != "" {
		b.WriteString("\nThe student has the following notes that you can reference:\n\n")
		b.WriteString(formattedNotes)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nThe student is asking: \"%s\"\n\n", query)
	b.WriteString("Provide a helpful response in markdown format. ")
	b.WriteString("If the student's notes contain relevant information, reference it.\n")
	b.WriteString("If not, provide a helpful response based on your knowledge. ")
	b.WriteString("Keep your responses concise but informative.\n")
	return b.String()
}
