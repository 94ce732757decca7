package module

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
	StoreModule(ctx context.Context, userId int, module Module) (Module, error)
	GetModule(ctx context.Context, userId int, moduleId string) (Module, error)
	GetModules(ctx context.Context, userId int) ([]Module, error)
	UpdateModule(ctx context.Context, userId int, module Module) (Module, error)
	DeleteModule(ctx context.Context, userId int, moduleId string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreModule(ctx context.Context, userId int, module Module) (Module, error) {
	query := `INSERT INTO modules (id, user_id, name, code, color) VALUES ($1, $2, $3, $4, $5)
				RETURNING id::text, name, code, color`

	var stored Module
	err := r.db.QueryRow(ctx, query, uuid.NewString(), userId, module.Name, module.Code, module.Color).
		Scan(&stored.Id, &stored.Name, &stored.Code, &stored.Color)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Module{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetModule(ctx context.Context, userId int, moduleId string) (Module, error) {
	if _, err := uuid.Parse(moduleId); err != nil {
		return Module{}, ErrModuleNotFound
	}
	query := `SELECT id::text, name, code, color FROM modules WHERE id = $1 AND user_id = $2`

	var module Module
	err := r.db.QueryRow(ctx, query, moduleId, userId).Scan(&module.Id, &module.Name, &module.Code, &module.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return Module{}, ErrModuleNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query module: %w", err)
		log.Error(err)
		return Module{}, err
	}
	return module, nil
}

func (r *RepositoryImpl) GetModules(ctx context.Context, userId int) ([]Module, error) {
	query := `SELECT id::text, name, code, color FROM modules WHERE user_id = $1 ORDER BY created_at, name`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query modules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	modules := make([]Module, 0, 10)
	for rows.Next() {
		var module Module
		if err := rows.Scan(&module.Id, &module.Name, &module.Code, &module.Color); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return modules, nil
}

func (r *RepositoryImpl) UpdateModule(ctx context.Context, userId int, module Module) (Module, error) {
	if _, err := uuid.Parse(module.Id); err != nil {
		return Module{}, ErrModuleNotFound
	}
	query := `UPDATE modules SET name = $1, code = $2, color = $3 WHERE id = $4 AND user_id = $5
				RETURNING id::text, name, code, color`

	var updated Module
	err := r.db.QueryRow(ctx, query, module.Name, module.Code, module.Color, module.Id, userId).
		Scan(&updated.Id, &updated.Name, &updated.Code, &updated.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return Module{}, ErrModuleNotFound
	} else if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return Module{}, err
	}
	return updated, nil
}

// DeleteModule removes the module and detaches its events and notes in one transaction. The
// events and notes themselves are kept.
func (r *RepositoryImpl) DeleteModule(ctx context.Context, userId int, moduleId string) error {
	if _, err := uuid.Parse(moduleId); err != nil {
		return ErrModuleNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE events SET module_id = NULL WHERE module_id = $1 AND user_id = $2`, moduleId, userId); err != nil {
		err := fmt.Errorf("could not detach events: %v", err)
		log.Error(err)
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE notes SET module_id = NULL WHERE module_id = $1 AND user_id = $2`, moduleId, userId); err != nil {
		err := fmt.Errorf("could not detach notes: %v", err)
		log.Error(err)
		return err
	}
	result, err := tx.Exec(ctx, `DELETE FROM modules WHERE id = $1 AND user_id = $2`, moduleId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrModuleNotFound
	}

	return tx.Commit(ctx)
}
