package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	err := db.insert(ctx, &item.ID,
		`INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := db.get(ctx, &item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "item", id)
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	res, err := db.exec(ctx, `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectRow(res, "item", item.ID)
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	query, extra := paginate(`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`, page.Size, page.Offset())
	items := []*models.Item{}
	if err := db.selectAll(ctx, &items, query, append([]interface{}{ownerID}, extra...)...); err != nil {
		return nil, fmt.Errorf("failed to get items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	pattern := likePattern(text)
	query, extra := paginate(`SELECT `+itemColumns+` FROM items
		WHERE available = ? AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
		ORDER BY id`, page.Size, page.Offset())

	items := []*models.Item{}
	args := append([]interface{}{true, pattern, pattern}, extra...)
	if err := db.selectAll(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	items := []*models.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}
	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}
	if err := db.selectAll(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get items by requests: %w", err)
	}
	return items, nil
}

// utc normalizes stored timestamps so text comparison in SQLite matches time order.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func expectRow(res interface{ RowsAffected() (int64, error) }, what string, id int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check %s %d update: %w", what, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
