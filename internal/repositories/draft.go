package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
)

// DraftRepository persists edit sessions. Each project has at most one draft.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

const draftColumns = `id, sequence, project_id, subtitles, checked, recommended_title, recommended_tags, translation, language, created_at, updated_at`

// Save inserts the draft, or replaces the contents of the project's existing draft.
//
// On return draft carries the stored id, sequence and timestamps.
func (r *DraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if draft.Recommended.Tags == nil {
		draft.Recommended.Tags = []string{}
	}
	tags, err := json.Marshal(draft.Recommended.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := time.Now()
	existing, err := r.GetByProject(ctx, draft.ProjectID)
	switch {
	case err == nil:
		query := `
			UPDATE drafts
			SET subtitles = ?, checked = ?, recommended_title = ?, recommended_tags = ?, translation = ?, language = ?, updated_at = ?
			WHERE id = ?
		`
		_, err = r.db.ExecContext(ctx, query,
			draft.Subtitles,
			draft.Checked,
			draft.Recommended.Title,
			string(tags),
			draft.Translation,
			draft.Language,
			now,
			existing.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}

		draft.ID = existing.ID
		draft.Sequence = existing.Sequence
		draft.CreatedAt = existing.CreatedAt
		draft.UpdatedAt = now
		return nil
	case !errors.Is(err, shared.ErrDraftNotFound):
		return err
	}

	sequence, err := NextSequence(ctx, r.db, "drafts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `INSERT INTO drafts (` + draftColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		draft.ProjectID,
		draft.Subtitles,
		draft.Checked,
		draft.Recommended.Title,
		string(tags),
		draft.Translation,
		draft.Language,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	draft.ID = id
	draft.Sequence = sequence
	draft.CreatedAt = now
	draft.UpdatedAt = now
	return nil
}

// Get retrieves a draft by ID
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE id = ?`
	return r.scan(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByProject retrieves the draft saved for projectID
func (r *DraftRepository) GetByProject(ctx context.Context, projectID string) (*models.Draft, error) {
	query := `SELECT ` + draftColumns + ` FROM drafts WHERE project_id = ?`
	return r.scan(r.db.QueryRowContext(ctx, query, projectID), "project "+projectID)
}

// List retrieves all drafts ordered by sequence
func (r *DraftRepository) List(ctx context.Context) ([]*models.Draft, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		draft, err := r.scan(rows, "")
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return drafts, nil
}

// Delete removes a draft by ID
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrDraftNotFound, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DraftRepository) scan(row scanner, ref string) (*models.Draft, error) {
	var (
		draft models.Draft
		tags  string
	)

	err := row.Scan(
		&draft.ID,
		&draft.Sequence,
		&draft.ProjectID,
		&draft.Subtitles,
		&draft.Checked,
		&draft.Recommended.Title,
		&tags,
		&draft.Translation,
		&draft.Language,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrDraftNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}

	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &draft.Recommended.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if draft.Recommended.Tags == nil {
		draft.Recommended.Tags = []string{}
	}

	return &draft, nil
}
