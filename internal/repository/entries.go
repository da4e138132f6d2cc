package repository

import (
	"context"
	"database/sql"

	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/google/uuid"
)

// PostgresEntryRepository implements the per-owner entry tables: journal,
// moods, goals, gratitude and gallery. Every query is scoped by the owner.
type PostgresEntryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresEntryRepository creates a new PostgresEntryRepository using the provided *sql.DB.
func NewPostgresEntryRepository(db *sql.DB) *PostgresEntryRepository {
	return &PostgresEntryRepository{DB: db}
}

// ListJournal returns the user's journal entries, newest first.
func (r *PostgresEntryRepository) ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, content, created_at FROM journal_entries
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapError("list journal", err)
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0)
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.CreatedAt); err != nil {
			return nil, mapError("scan journal", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError("list journal", rows.Err())
}

// CreateJournal inserts a journal entry for e.UserID and returns the stored row.
func (r *PostgresEntryRepository) CreateJournal(ctx context.Context, e models.JournalEntry) (*models.JournalEntry, error) {
	e.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO journal_entries (id, user_id, title, content) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, e.ID, e.UserID, e.Title, e.Content).Scan(&e.CreatedAt)
	if err != nil {
		return nil, mapError("create journal", err)
	}
	return &e, nil
}

// UpdateJournal replaces the title and content of the user's entry id.
func (r *PostgresEntryRepository) UpdateJournal(ctx context.Context, userID, id, title, content string) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := r.DB.QueryRowContext(ctx, `
		UPDATE journal_entries SET title = $3, content = $4
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, content, created_at
	`, id, userID, title, content).Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.CreatedAt)
	if err != nil {
		return nil, mapError("update journal", err)
	}
	return &e, nil
}

// DeleteJournal removes the user's entry id.
func (r *PostgresEntryRepository) DeleteJournal(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("delete journal", err)
	}
	return requireAffected("delete journal", res)
}

// ListMoods returns the user's mood log, oldest first.
func (r *PostgresEntryRepository) ListMoods(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, rating, note, created_at FROM moods
		WHERE user_id = $1 ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, mapError("list moods", err)
	}
	defer rows.Close()

	entries := make([]models.MoodEntry, 0)
	for rows.Next() {
		var e models.MoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Rating, &e.Note, &e.CreatedAt); err != nil {
			return nil, mapError("scan mood", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError("list moods", rows.Err())
}

// CreateMood appends a mood rating.
func (r *PostgresEntryRepository) CreateMood(ctx context.Context, e models.MoodEntry) (*models.MoodEntry, error) {
	e.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO moods (id, user_id, rating, note) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, e.ID, e.UserID, e.Rating, e.Note).Scan(&e.CreatedAt)
	if err != nil {
		return nil, mapError("create mood", err)
	}
	return &e, nil
}

// ListGoals returns the user's goals, newest first.
func (r *PostgresEntryRepository) ListGoals(ctx context.Context, userID string) ([]models.GoalEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, text, category, completed, created_at FROM goals
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapError("list goals", err)
	}
	defer rows.Close()

	entries := make([]models.GoalEntry, 0)
	for rows.Next() {
		var e models.GoalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.Category, &e.Completed, &e.CreatedAt); err != nil {
			return nil, mapError("scan goal", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError("list goals", rows.Err())
}

// CreateGoal inserts an uncompleted goal.
func (r *PostgresEntryRepository) CreateGoal(ctx context.Context, e models.GoalEntry) (*models.GoalEntry, error) {
	e.ID = uuid.NewString()
	e.Completed = false
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO goals (id, user_id, text, category, completed) VALUES ($1, $2, $3, $4, false)
		RETURNING created_at
	`, e.ID, e.UserID, e.Text, e.Category).Scan(&e.CreatedAt)
	if err != nil {
		return nil, mapError("create goal", err)
	}
	return &e, nil
}

// ToggleGoal flips the completed flag in a single statement and returns the
// stored row, so concurrent toggles never read a stale value.
func (r *PostgresEntryRepository) ToggleGoal(ctx context.Context, userID, id string) (*models.GoalEntry, error) {
	var e models.GoalEntry
	err := r.DB.QueryRowContext(ctx, `
		UPDATE goals SET completed = NOT completed
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, text, category, completed, created_at
	`, id, userID).Scan(&e.ID, &e.UserID, &e.Text, &e.Category, &e.Completed, &e.CreatedAt)
	if err != nil {
		return nil, mapError("toggle goal", err)
	}
	return &e, nil
}

// DeleteGoal removes the user's goal id.
func (r *PostgresEntryRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("delete goal", err)
	}
	return requireAffected("delete goal", res)
}

// ListGratitude returns the user's gratitude log, newest first.
func (r *PostgresEntryRepository) ListGratitude(ctx context.Context, userID string) ([]models.GratitudeEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, text, created_at FROM gratitude_entries
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapError("list gratitude", err)
	}
	defer rows.Close()

	entries := make([]models.GratitudeEntry, 0)
	for rows.Next() {
		var e models.GratitudeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt); err != nil {
			return nil, mapError("scan gratitude", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError("list gratitude", rows.Err())
}

// CreateGratitude appends a gratitude line.
func (r *PostgresEntryRepository) CreateGratitude(ctx context.Context, e models.GratitudeEntry) (*models.GratitudeEntry, error) {
	e.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO gratitude_entries (id, user_id, text) VALUES ($1, $2, $3)
		RETURNING created_at
	`, e.ID, e.UserID, e.Text).Scan(&e.CreatedAt)
	if err != nil {
		return nil, mapError("create gratitude", err)
	}
	return &e, nil
}

// ListGallery returns the user's images, newest first.
func (r *PostgresEntryRepository) ListGallery(ctx context.Context, userID string) ([]models.GalleryImage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, url, created_at FROM gallery_images
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapError("list gallery", err)
	}
	defer rows.Close()

	images := make([]models.GalleryImage, 0)
	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.Title, &img.URL, &img.CreatedAt); err != nil {
			return nil, mapError("scan gallery", err)
		}
		images = append(images, img)
	}
	return images, mapError("list gallery", rows.Err())
}

// CreateGalleryImage appends an image record.
func (r *PostgresEntryRepository) CreateGalleryImage(ctx context.Context, img models.GalleryImage) (*models.GalleryImage, error) {
	img.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO gallery_images (id, user_id, title, url) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, img.ID, img.UserID, img.Title, img.URL).Scan(&img.CreatedAt)
	if err != nil {
		return nil, mapError("create gallery image", err)
	}
	return &img, nil
}
