package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreNote(ctx context.Context, userId int, note Note) (Note, error)
	GetNote(ctx context.Context, userId int, noteId string) (Note, error)
	GetNotes(ctx context.Context, userId int) ([]Note, error)
	UpdateNote(ctx context.Context, userId int, note Note) (Note, error)
	DeleteNote(ctx context.Context, userId int, noteId string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const noteColumns = `id::text, title, content, COALESCE(module_id::text, ''), created_at, updated_at`

func scanNote(row pgx.Row) (Note, error) {
	var n Note
	err := row.Scan(&n.Id, &n.Title, &n.Content, &n.ModuleId, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func nullableModule(moduleId string) *string {
	if moduleId == NoModule {
		return nil
	}
	return &moduleId
}

func (r *RepositoryImpl) StoreNote(ctx context.Context, userId int, note Note) (Note, error) {
	query := `INSERT INTO notes (id, user_id, title, content, module_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING ` + noteColumns

	stored, err := scanNote(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		userId,
		note.Title,
		note.Content,
		nullableModule(note.ModuleId),
		note.CreatedAt,
		note.UpdatedAt,
	))
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Note{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetNote(ctx context.Context, userId int, noteId string) (Note, error) {
	if _, err := uuid.Parse(noteId); err != nil {
		return Note{}, ErrNoteNotFound
	}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`

	note, err := scanNote(r.db.QueryRow(ctx, query, noteId, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNoteNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query note: %w", err)
		log.Error(err)
		return Note{}, err
	}
	return note, nil
}

// GetNotes returns the user's notes, most recently updated first.
func (r *RepositoryImpl) GetNotes(ctx context.Context, userId int) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC, id`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query notes: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0, 10)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return notes, nil
}

func (r *RepositoryImpl) UpdateNote(ctx context.Context, userId int, note Note) (Note, error) {
	if _, err := uuid.Parse(note.Id); err != nil {
		return Note{}, ErrNoteNotFound
	}
	query := `UPDATE notes SET title = $1, content = $2, module_id = $3, updated_at = $4
				WHERE id = $5 AND user_id = $6
				RETURNING ` + noteColumns

	updated, err := scanNote(r.db.QueryRow(ctx, query,
		note.Title,
		note.Content,
		nullableModule(note.ModuleId),
		note.UpdatedAt,
		note.Id,
		userId,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNoteNotFound
	} else if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Note{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteNote(ctx context.Context, userId int, noteId string) error {
	if _, err := uuid.Parse(noteId); err != nil {
		return ErrNoteNotFound
	}
	result, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
