package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery = `
		SELECT id, name, created_at, updated_at
		FROM categories
		ORDER BY id
	`
	getCategoryByIDQuery = `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	findCategoriesByIDsQuery = `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = ANY($1)
		ORDER BY id
	`
	insertCategoryQuery = `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`
	updateCategoryQuery = `
		UPDATE categories
		SET name = $1,
			updated_at = now()
		WHERE id = $2
		RETURNING id, name, created_at, updated_at
	`
	deleteCategoryQuery = `
		DELETE FROM categories c
		WHERE c.id = $1
		AND NOT EXISTS (SELECT 1 FROM products p WHERE p.category_id = c.id)
	`
	categoryExistsQuery = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
)

// foreignKeyViolation is the Postgres SQLSTATE raised when a restricted
// category row is removed while products still point at it.
const foreignKeyViolation = "23503"

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	return r.query(ctx, listCategoriesQuery)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, getCategoryByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return c, nil
}

func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []int64) ([]Category, error) {
	if len(ids) == 0 {
		return []Category{}, nil
	}
	return r.query(ctx, findCategoriesByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) Create(ctx context.Context, name string) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, insertCategoryQuery, name))
	if err != nil {
		return Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CreateMany(ctx context.Context, names []string) ([]Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	out := make([]Category, 0, len(names))
	for i, name := range names {
		c, err := scanCategory(tx.QueryRowContext(ctx, insertCategoryQuery, name))
		if err != nil {
			return nil, fmt.Errorf("failed to insert category %d: %w", i, err)
		}
		out = append(out, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit categories: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, name string) (Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, updateCategoryQuery, name, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return c, nil
}

// Delete removes the category unless products still reference it. When no
// row is removed a second lookup tells a missing id from a restricted one.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrHasProducts
		}
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, categoryExistsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check category %d: %w", id, err)
	}
	if exists {
		return ErrHasProducts
	}
	return ErrNotFound
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(scanner rowScanner) (Category, error) {
	var c Category
	err := scanner.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
