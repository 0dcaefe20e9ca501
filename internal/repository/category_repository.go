// This file defines repository methods for categories. Every read and
// write is filtered by created_by, so a category owned by another user is
// indistinguishable from a missing one.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tickethub/helpdesk-api/internal/model"
)

// ErrCategoryNotFound is returned when a category does not exist or is
// owned by a different user.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the provided DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a new category for its owner. On success the ID and
// timestamp fields are populated from the database.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	c.ID = uuid.NewString()
	const qInsert = "INSERT INTO categories (id, title, created_by) VALUES (?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, qInsert, c.ID, c.Title, c.CreatedBy); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM categories WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByIDAndOwner fetches a category by id but only if it belongs to the
// specified owner. Missing and foreign rows both yield ErrCategoryNotFound.
func (r *CategoryRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Category, error) {
	const q = "SELECT id, title, created_by, created_at, updated_at FROM categories WHERE id = ? AND created_by = ?"
	var c model.Category
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&c.ID, &c.Title, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CountByOwner returns the number of categories the owner has.
func (r *CategoryRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE created_by = ?", ownerID).Scan(&n)
	return n, err
}

// ListByOwner returns one page of the owner's categories ordered by
// creation time then id, so page concatenation reproduces the full set.
func (r *CategoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Category, error) {
	const q = `SELECT id, title, created_by, created_at, updated_at
	           FROM categories WHERE created_by = ? ORDER BY created_at, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTitle updates the category title if it belongs to the provided
// owner. ErrCategoryNotFound is returned when no row is affected.
func (r *CategoryRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) error {
	const q = `UPDATE categories
	           SET title = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND created_by = ?`
	res, err := r.db.ExecContext(ctx, q, title, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a category owned by the given user.
// ErrCategoryNotFound is returned when nothing was deleted.
func (r *CategoryRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND created_by = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
