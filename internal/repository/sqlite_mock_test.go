package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

var buildRowColumns = []string{"id", "user_id", "name", "description", "configuration",
	"is_public", "is_template", "created_at", "updated_at"}

// TestListBuildsByUser_BadConfiguration tests that a corrupt JSON column surfaces as an error
func TestListBuildsByUser_BadConfiguration(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(buildRowColumns).
		AddRow("b1", "u1", "Build", nil, "{not json", false, false, now, now)
	mock.ExpectQuery("SELECT (.+) FROM builds").WillReturnRows(rows)

	if _, err := repo.ListBuildsByUser(context.Background(), "u1"); err == nil {
		t.Error("expected error from bad configuration, got nil")
	}
}

// TestListPublicBuilds_ScanError tests row scanning error
func TestListPublicBuilds_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	// is_public should be a bool, created_at a time
	rows := sqlmock.NewRows(append(buildRowColumns, "username", "full_name")).
		AddRow("b1", "u1", "Build", nil, "{}", "maybe", false, "yesterday", nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM builds").WillReturnRows(rows)

	if _, err := repo.ListPublicBuilds(context.Background(), 10); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListTemplates_RowsError tests iteration errors
func TestListTemplates_RowsError(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(buildRowColumns).
		AddRow("t1", nil, "Template", nil, "{}", false, true, now, now).
		RowError(0, errors.New("row error"))
	mock.ExpectQuery("SELECT (.+) FROM builds").WillReturnRows(rows)

	if _, err := repo.ListTemplates(context.Background()); err == nil {
		t.Error("expected rows error, got nil")
	}
}

// TestQueryErrors tests that query failures are returned unchanged
func TestQueryErrors(t *testing.T) {
	dbErr := errors.New("database is locked")
	ctx := context.Background()

	tests := []struct {
		name string
		call func(r *Repository) error
	}{
		{"GetUser", func(r *Repository) error { _, err := r.GetUser(ctx, "u1"); return err }},
		{"GetUserByEmail", func(r *Repository) error { _, err := r.GetUserByEmail(ctx, "a@b.c"); return err }},
		{"GetProfile", func(r *Repository) error { _, err := r.GetProfile(ctx, "u1"); return err }},
		{"GetBuild", func(r *Repository) error { _, err := r.GetBuild(ctx, "b1"); return err }},
		{"ListBuildsByUser", func(r *Repository) error { _, err := r.ListBuildsByUser(ctx, "u1"); return err }},
		{"ListPublicBuilds", func(r *Repository) error { _, err := r.ListPublicBuilds(ctx, 5); return err }},
		{"ListTemplates", func(r *Repository) error { _, err := r.ListTemplates(ctx); return err }},
		{"CountTemplates", func(r *Repository) error { _, err := r.CountTemplates(ctx); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectQuery("SELECT").WillReturnError(dbErr)

			if err := tt.call(repo); !errors.Is(err, dbErr) {
				t.Errorf("expected %v, got %v", dbErr, err)
			}
		})
	}
}

// TestExecErrors tests that write failures are returned unchanged
func TestExecErrors(t *testing.T) {
	dbErr := errors.New("disk I/O error")
	ctx := context.Background()
	build := &models.Build{ID: "b1", Name: "Build"}

	tests := []struct {
		name  string
		match string
		call  func(r *Repository) error
	}{
		{"UpdateProfile", "UPDATE profiles", func(r *Repository) error { return r.UpdateProfile(ctx, &models.Profile{ID: "u1"}) }},
		{"CreateBuild", "INSERT INTO builds", func(r *Repository) error { return r.CreateBuild(ctx, build) }},
		{"UpdateBuild", "UPDATE builds", func(r *Repository) error { return r.UpdateBuild(ctx, build) }},
		{"DeleteBuild", "DELETE FROM builds", func(r *Repository) error { return r.DeleteBuild(ctx, "b1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec(tt.match).WillReturnError(dbErr)

			if err := tt.call(repo); !errors.Is(err, dbErr) {
				t.Errorf("expected %v, got %v", dbErr, err)
			}
		})
	}
}

// TestCreateUser_ProfileInsertFails tests that the user insert is rolled back
func TestCreateUser_ProfileInsertFails(t *testing.T) {
	repo, mock := newMockRepo(t)
	dbErr := errors.New("constraint failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO profiles").WillReturnError(dbErr)
	mock.ExpectRollback()

	err := repo.CreateUser(context.Background(), &models.User{ID: "u1"}, &models.Profile{ID: "u1"})
	if !errors.Is(err, dbErr) {
		t.Errorf("expected %v, got %v", dbErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestCreateUser_BeginFails tests transaction start failure
func TestCreateUser_BeginFails(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("busy"))

	if err := repo.CreateUser(context.Background(), &models.User{}, &models.Profile{}); err == nil {
		t.Error("expected error, got nil")
	}
}

// TestPing_Mock tests ping through the mock driver
func TestPing_Mock(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()
	repo := &Repository{db: db}

	mock.ExpectPing().WillReturnError(errors.New("gone"))
	if err := repo.Ping(context.Background()); err == nil {
		t.Error("expected ping error, got nil")
	}
}
