package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreEvent(ctx context.Context, userId int, event Event) (Event, error)
	GetEvent(ctx context.Context, userId int, eventId string) (Event, error)
	GetEvents(ctx context.Context, userId int) ([]Event, error)
	UpdateEvent(ctx context.Context, userId int, event Event) (Event, error)
	SetCompleted(ctx context.Context, userId int, eventId string, completed bool) (Event, error)
	DeleteEvent(ctx context.Context, userId int, eventId string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const eventColumns = `id::text, title, description, start_time, end_time, category, COALESCE(module_id::text, ''),
	links, notes, reminders, completed, priority, recurrence`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	var category, priority string
	var recurrence []byte
	err := row.Scan(&e.Id, &e.Title, &e.Description, &e.Start, &e.End, &category, &e.ModuleId,
		&e.Links, &e.Notes, &e.Reminders, &e.Completed, &priority, &recurrence)
	if err != nil {
		return Event{}, err
	}
	e.Category = Category(category)
	e.Priority = Priority(priority)
	if len(recurrence) > 0 {
		var rule RecurrenceRule
		if err := json.Unmarshal(recurrence, &rule); err != nil {
			return Event{}, fmt.Errorf("could not decode recurrence of event %s: %w", e.Id, err)
		}
		e.Recurrence = &rule
	}
	return e, nil
}

func encodeRecurrence(rule *RecurrenceRule) ([]byte, error) {
	if rule == nil {
		return nil, nil
	}
	return json.Marshal(rule)
}

func nullableModule(moduleId string) *string {
	if moduleId == NoModule {
		return nil
	}
	return &moduleId
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId int, event Event) (Event, error) {
	recurrence, err := encodeRecurrence(event.Recurrence)
	if err != nil {
		return Event{}, err
	}

	query := `INSERT INTO events (
                    id,
                    user_id,
                    title,
                    description,
                    start_time,
                    end_time,
                    category,
                    module_id,
                    links,
                    notes,
                    reminders,
                    completed,
                    priority,
                    recurrence
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				RETURNING ` + eventColumns

	event.Id = uuid.NewString()
	stored, err := scanEvent(r.db.QueryRow(ctx, query,
		event.Id,
		userId,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		string(event.Category),
		nullableModule(event.ModuleId),
		event.Links,
		event.Notes,
		event.Reminders,
		event.Completed,
		string(event.Priority),
		recurrence,
	))
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Event{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, eventId string) (Event, error) {
	if _, err := uuid.Parse(eventId); err != nil {
		return Event{}, ErrEventNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`
	event, err := scanEvent(r.db.QueryRow(ctx, query, eventId, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

// GetEvents returns every stored event of the user, templates included, ordered by start.
func (r *RepositoryImpl) GetEvents(ctx context.Context, userId int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY start_time, created_at`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return events, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event Event) (Event, error) {
	if _, err := uuid.Parse(event.Id); err != nil {
		return Event{}, ErrEventNotFound
	}
	recurrence, err := encodeRecurrence(event.Recurrence)
	if err != nil {
		return Event{}, err
	}

	query := `UPDATE events SET title = $1, description = $2, start_time = $3, end_time = $4, category = $5,
				module_id = $6, links = $7, notes = $8, reminders = $9, completed = $10, priority = $11, recurrence = $12
				WHERE id = $13 AND user_id = $14
				RETURNING ` + eventColumns
	updated, err := scanEvent(r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		string(event.Category),
		nullableModule(event.ModuleId),
		event.Links,
		event.Notes,
		event.Reminders,
		event.Completed,
		string(event.Priority),
		recurrence,
		event.Id,
		userId,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) SetCompleted(ctx context.Context, userId int, eventId string, completed bool) (Event, error) {
	if _, err := uuid.Parse(eventId); err != nil {
		return Event{}, ErrEventNotFound
	}
	query := `UPDATE events SET completed = $1 WHERE id = $2 AND user_id = $3 RETURNING ` + eventColumns
	updated, err := scanEvent(r.db.QueryRow(ctx, query, completed, eventId, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, eventId string) error {
	if _, err := uuid.Parse(eventId); err != nil {
		return ErrEventNotFound
	}
	result, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
