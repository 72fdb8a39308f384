package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.Created = utc(comment.Created)
	err := db.insert(ctx, &comment.ID,
		`INSERT INTO comments (text, item_id, author_id, author_name, created) VALUES (?, ?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.AuthorName, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := db.selectAll(ctx, &comments,
		`SELECT id, text, item_id, author_id, author_name, created FROM comments WHERE item_id = ? ORDER BY created, id`,
		itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of item %d: %w", itemID, err)
	}
	return comments, nil
}
