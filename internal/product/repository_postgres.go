package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listProductsQuery = `
		SELECT id, name, description, price, category_id, image, created_at, updated_at
		FROM products
		ORDER BY id
	`
	getProductByIDQuery = `
		SELECT id, name, description, price, category_id, image, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	insertProductQuery = `
		INSERT INTO products (name, description, price, category_id, image)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, name, description, price, category_id, image, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			category_id = $4,
			image = $5,
			updated_at = now()
		WHERE id = $6
		RETURNING id, name, description, price, category_id, image, created_at, updated_at
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRowContext(ctx, insertProductQuery, insertArgs(p)...))
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) CreateMany(ctx context.Context, ps []Product) ([]Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	out := make([]Product, 0, len(ps))
	for i, p := range ps {
		created, err := scanProduct(tx.QueryRowContext(ctx, insertProductQuery, insertArgs(p)...))
		if err != nil {
			return nil, fmt.Errorf("failed to insert product %d: %w", i, err)
		}
		out = append(out, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit products: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	args := append(insertArgs(p), id)
	updated, err := scanProduct(r.db.QueryRowContext(ctx, updateProductQuery, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func insertArgs(p Product) []any {
	var image sql.NullString
	if p.Image != nil {
		image = sql.NullString{String: *p.Image, Valid: true}
	}
	return []any{p.Name, p.Description, p.Price, p.CategoryID, image}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p     Product
		image sql.NullString
	)
	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&image,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	return p, nil
}
