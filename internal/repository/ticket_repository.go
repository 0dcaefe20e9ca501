// This file defines repository methods for tickets. Like categories, all
// queries are owner-scoped: created_by is part of every WHERE clause.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tickethub/helpdesk-api/internal/model"
)

// ErrTicketNotFound is returned when a ticket does not exist or is owned
// by a different user.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo encapsulates all database queries related to tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the provided DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// Create inserts a new ticket for its owner. The category reference must
// already have been validated against the owner's categories; this layer
// only persists.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	t.ID = uuid.NewString()
	const qInsert = `INSERT INTO tickets (id, title, category_id, description, status, priority, created_by)
	                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, qInsert,
		t.ID, t.Title, t.CategoryID, t.Description, t.Status, t.Priority, t.CreatedBy); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM tickets WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByIDAndOwner fetches a ticket by id but only if it belongs to the
// specified owner. Missing and foreign rows both yield ErrTicketNotFound.
func (r *TicketRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Ticket, error) {
	const q = `SELECT id, title, category_id, description, status, priority, created_by, created_at, updated_at
	           FROM tickets WHERE id = ? AND created_by = ?`
	var t model.Ticket
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(
		&t.ID, &t.Title, &t.CategoryID, &t.Description, &t.Status, &t.Priority, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CountByOwner returns the number of tickets the owner has.
func (r *TicketRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE created_by = ?", ownerID).Scan(&n)
	return n, err
}

// ListByOwner returns one page of the owner's tickets ordered by creation
// time then id.
func (r *TicketRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Ticket, error) {
	const q = `SELECT id, title, category_id, description, status, priority, created_by, created_at, updated_at
	           FROM tickets WHERE created_by = ? ORDER BY created_at, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Ticket{}
	for rows.Next() {
		t := new(model.Ticket)
		if err := rows.Scan(&t.ID, &t.Title, &t.CategoryID, &t.Description, &t.Status, &t.Priority, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the mutable fields of a ticket owned by the given user.
// ErrTicketNotFound is returned when no row is affected.
func (r *TicketRepo) Update(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets
	           SET title = ?, category_id = ?, description = ?, status = ?, priority = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND created_by = ?`
	res, err := r.db.ExecContext(ctx, q, t.Title, t.CategoryID, t.Description, t.Status, t.Priority, t.ID, t.CreatedBy)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a ticket owned by the given user.
// ErrTicketNotFound is returned when nothing was deleted.
func (r *TicketRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tickets WHERE id = ? AND created_by = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}
