package comment

import (
	"context"
	"database/sql"
	"fmt"

	"atelier/internal/content/models"
	"atelier/internal/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const commentColumns = "id, post_id, author, body, approved, ip, created_at"

func (s *PostgresStore) Create(ctx context.Context, c *models.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.PostID, c.Author, c.Body, c.Approved, c.IP, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Approve(ctx context.Context, id string) error {
	return s.exec(ctx, id, `UPDATE comments SET approved = true WHERE id = $1`)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, id, `DELETE FROM comments WHERE id = $1`)
}

func (s *PostgresStore) exec(ctx context.Context, id, query string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("comment %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("comment %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListByPost(ctx context.Context, postID string, approvedOnly bool) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1`
	if approvedOnly {
		query += ` AND approved`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return scanComments(rows)
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE NOT approved
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending comments: %w", err)
	}
	return scanComments(rows)
}

func scanComments(rows *sql.Rows) ([]*models.Comment, error) {
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &c.Approved, &c.IP, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return comments, nil
}
