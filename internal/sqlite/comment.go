package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/rpggio/vantage/internal/repository"
)

// CommentRepository implements comment.Repository for SQLite
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `
	id, target_id, parent_id, author_id, content, mentions, reactions,
	created_at, updated_at, is_edited, version
`

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	mentions, reactions, err := encodeCommentSets(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO comments (` + commentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.TargetID,
		c.ParentID,
		c.AuthorID,
		c.Content,
		mentions,
		reactions,
		c.CreatedAt,
		c.UpdatedAt,
		c.IsEdited,
		c.Version,
	)
	if err != nil {
		return writeError("create comment", err)
	}
	return nil
}

// Get retrieves a comment by ID
func (r *CommentRepository) Get(ctx context.Context, id string) (*comment.Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// Update replaces content, mentions and reactions when the stored version
// matches expectedVersion
func (r *CommentRepository) Update(ctx context.Context, c *comment.Comment, expectedVersion int64) error {
	mentions, reactions, err := encodeCommentSets(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE comments
		SET content = ?, mentions = ?, reactions = ?, updated_at = ?, is_edited = ?, version = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Content,
		mentions,
		reactions,
		c.UpdatedAt,
		c.IsEdited,
		c.Version,
		c.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return r.db.checkVersioned(ctx, result, "comments", c.ID)
}

// ListByTarget returns the flat comment list of a target in creation order
func (r *CommentRepository) ListByTarget(ctx context.Context, targetID string) ([]comment.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE target_id = ? ORDER BY created_at, rowid`, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []comment.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*comment.Comment, error) {
	var (
		c         comment.Comment
		parentID  sql.NullString
		mentions  string
		reactions string
	)
	if err := row.Scan(
		&c.ID,
		&c.TargetID,
		&parentID,
		&c.AuthorID,
		&c.Content,
		&mentions,
		&reactions,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.IsEdited,
		&c.Version,
	); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if err := json.Unmarshal([]byte(mentions), &c.Mentions); err != nil {
		return nil, fmt.Errorf("decoding mentions of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(reactions), &c.Reactions); err != nil {
		return nil, fmt.Errorf("decoding reactions of %s: %w", c.ID, err)
	}
	if len(c.Reactions) == 0 {
		c.Reactions = nil
	}
	return &c, nil
}

func encodeCommentSets(c *comment.Comment) (string, string, error) {
	mentions := c.Mentions
	if mentions == nil {
		mentions = []string{}
	}
	m, err := json.Marshal(mentions)
	if err != nil {
		return "", "", fmt.Errorf("encoding mentions: %w", err)
	}
	reactions := c.Reactions
	if reactions == nil {
		reactions = []comment.Reaction{}
	}
	rs, err := json.Marshal(reactions)
	if err != nil {
		return "", "", fmt.Errorf("encoding reactions: %w", err)
	}
	return string(m), string(rs), nil
}
