package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate creates the schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT UNIQUE COLLATE NOCASE,
			full_name TEXT,
			avatar_url TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			name TEXT NOT NULL,
			description TEXT,
			configuration TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT 0,
			is_template BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_builds_user ON builds(user_id, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_builds_public ON builds(is_public, created_at)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ==================== Users ====================

// CreateUser inserts a user and their profile in one transaction
func (r *Repository) CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, email, username, full_name, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Email, nullString(profile.Username), nullString(profile.FullName),
		nullString(profile.AvatarURL), profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	return tx.Commit()
}

func (r *Repository) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user by ID
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByEmail returns a user by email, ignoring case
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email = ?", strings.TrimSpace(email))
}

// GetProfile returns the profile of a user
func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	var username, fullName, avatarURL sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, full_name, avatar_url, created_at, updated_at
		FROM profiles WHERE id = ?
	`, userID).Scan(&p.ID, &p.Email, &username, &fullName, &avatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Username = username.String
	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return &p, nil
}

// UpdateProfile saves the editable profile fields
func (r *Repository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET username = ?, full_name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		nullString(p.Username), nullString(p.FullName), nullString(p.AvatarURL), p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Builds ====================

const buildColumns = `b.id, b.user_id, b.name, b.description, b.configuration,
	b.is_public, b.is_template, b.created_at, b.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBuild reads buildColumns, optionally followed by the author's username and full name
func scanBuild(row rowScanner, withAuthor bool) (*models.Build, error) {
	var b models.Build
	var userID, description sql.NullString
	var config string
	dest := []interface{}{&b.ID, &userID, &b.Name, &description, &config,
		&b.IsPublic, &b.IsTemplate, &b.CreatedAt, &b.UpdatedAt}

	var username, fullName sql.NullString
	if withAuthor {
		dest = append(dest, &username, &fullName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	b.UserID = userID.String
	b.Description = description.String
	if err := json.Unmarshal([]byte(config), &b.Configuration); err != nil {
		return nil, fmt.Errorf("build %s: bad configuration: %w", b.ID, err)
	}
	if withAuthor && (username.Valid || fullName.Valid) {
		b.Author = &models.Author{Username: username.String, FullName: fullName.String}
	}
	return &b, nil
}

// CreateBuild inserts a build
func (r *Repository) CreateBuild(ctx context.Context, b *models.Build) error {
	config, err := json.Marshal(b.Configuration)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO builds (id, user_id, name, description, configuration, is_public, is_template, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, nullString(b.UserID), b.Name, nullString(b.Description), string(config),
		b.IsPublic, b.IsTemplate, b.CreatedAt, b.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetBuild returns a build by ID with its author
func (r *Repository) GetBuild(ctx context.Context, id string) (*models.Build, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+buildColumns+`, p.username, p.full_name
		FROM builds b LEFT JOIN profiles p ON p.id = b.user_id
		WHERE b.id = ?
	`, id)
	b, err := scanBuild(row, true)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateBuild saves every mutable field of a build
func (r *Repository) UpdateBuild(ctx context.Context, b *models.Build) error {
	config, err := json.Marshal(b.Configuration)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE builds SET name = ?, description = ?, configuration = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, nullString(b.Description), string(config), b.IsPublic, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBuild removes a build
func (r *Repository) DeleteBuild(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM builds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryBuilds(ctx context.Context, withAuthor bool, query string, args ...interface{}) ([]models.Build, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	builds := []models.Build{}
	for rows.Next() {
		b, err := scanBuild(rows, withAuthor)
		if err != nil {
			return nil, err
		}
		builds = append(builds, *b)
	}
	return builds, rows.Err()
}

// ListBuildsByUser returns a user's own builds, most recently updated first
func (r *Repository) ListBuildsByUser(ctx context.Context, userID string) ([]models.Build, error) {
	return r.queryBuilds(ctx, false, `
		SELECT `+buildColumns+`
		FROM builds b
		WHERE b.user_id = ? AND b.is_template = 0
		ORDER BY b.updated_at DESC
	`, userID)
}

// ListPublicBuilds returns shared builds with their authors, newest first
func (r *Repository) ListPublicBuilds(ctx context.Context, limit int) ([]models.Build, error) {
	return r.queryBuilds(ctx, true, `
		SELECT `+buildColumns+`, p.username, p.full_name
		FROM builds b LEFT JOIN profiles p ON p.id = b.user_id
		WHERE b.is_public = 1 AND b.is_template = 0
		ORDER BY b.created_at DESC
		LIMIT ?
	`, limit)
}

// ListTemplates returns the starter builds
func (r *Repository) ListTemplates(ctx context.Context) ([]models.Build, error) {
	return r.queryBuilds(ctx, false, `
		SELECT `+buildColumns+`
		FROM builds b
		WHERE b.is_template = 1
		ORDER BY b.created_at ASC, b.name ASC
	`)
}

// CountTemplates returns how many starter builds exist
func (r *Repository) CountTemplates(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds WHERE is_template = 1`).Scan(&n)
	return n, err
}

// Now returns the current time in UTC. Timestamps are stored as text, so a
// single zone keeps ORDER BY consistent with time order.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
