package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/schema"
)

const defaultDocumentKey = "default"

// PostgresRepo хранит тот же документ одной jsonb-строкой в board_documents
type PostgresRepo struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool: pool,
		key:  defaultDocumentKey,
	}
}

func (r *PostgresRepo) Load(ctx context.Context) ([]model.Task, error) {
	var body []byte
	err := r.pool.QueryRow(ctx, `
		SELECT body
		FROM board_documents
		WHERE key = $1
	`, r.key).Scan(&body)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrorNotFound
	}
	if err != nil {
		return nil, err
	}

	tasks, err := schema.ValidateDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: board_documents/%s: %v", ErrorCorrupt, r.key, err)
	}
	return tasks, nil
}

// Save upserts the whole document. Last write wins.
func (r *PostgresRepo) Save(ctx context.Context, tasks []model.Task) error {
	data, err := encodeDocument(tasks)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO board_documents (key, body, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET body = EXCLUDED.body, updated_at = now()
	`, r.key, string(data))
	return err
}
