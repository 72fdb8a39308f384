package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, description, requester_id, created`

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	req.Created = utc(req.Created)
	err := db.insert(ctx, &req.ID,
		`INSERT INTO item_requests (description, requester_id, created) VALUES (?, ?, ?)`,
		req.Description, req.RequesterID, req.Created)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var req models.ItemRequest
	if err := db.get(ctx, &req, `SELECT `+requestColumns+` FROM item_requests WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "item request", id)
	}
	return &req, nil
}

func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	reqs := []*models.ItemRequest{}
	err := db.selectAll(ctx, &reqs,
		`SELECT `+requestColumns+` FROM item_requests WHERE requester_id = ? ORDER BY created, id`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item requests of %d: %w", requesterID, err)
	}
	return reqs, nil
}

// GetRequestsExcept lists requests of everyone but userID, newest first.
func (db *DB) GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	query, extra := paginate(`SELECT `+requestColumns+` FROM item_requests
		WHERE requester_id <> ? ORDER BY created DESC, id DESC`, page.Size, page.Offset())

	reqs := []*models.ItemRequest{}
	if err := db.selectAll(ctx, &reqs, query, append([]interface{}{userID}, extra...)...); err != nil {
		return nil, fmt.Errorf("failed to get item requests: %w", err)
	}
	return reqs, nil
}
