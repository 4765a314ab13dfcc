package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

func TestMockClient_RequiresSignIn(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	if _, err := mock.ListBuilds(ctx); !IsAuthRequired(err) {
		t.Errorf("ListBuilds: expected AuthRequiredError, got %v", err)
	}
	if _, err := mock.SaveBuild(ctx, NewBuild{Name: "x"}); !IsAuthRequired(err) {
		t.Errorf("SaveBuild: expected AuthRequiredError, got %v", err)
	}
	if _, err := mock.CurrentUser(ctx); !IsAuthRequired(err) {
		t.Errorf("CurrentUser: expected AuthRequiredError, got %v", err)
	}
}

func TestMockClient_AccountLifecycle(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	if _, err := mock.SignUp(ctx, "a@example.com", "pw", Profile{FullName: "Alice"}); err != nil {
		t.Fatal(err)
	}
	var pErr *PersistenceError
	if _, err := mock.SignUp(ctx, "a@example.com", "pw", Profile{}); !errors.As(err, &pErr) || pErr.Status != 409 {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}

	mock.SignOut(ctx)
	if _, err := mock.SignIn(ctx, "a@example.com", "nope"); !IsAuthRequired(err) {
		t.Errorf("expected bad password to fail, got %v", err)
	}
	session, err := mock.SignIn(ctx, "a@example.com", "pw")
	if err != nil || session.Profile.FullName != "Alice" {
		t.Fatalf("SignIn: %v %+v", err, session)
	}
}

func TestMockClient_BuildsOwnership(t *testing.T) {
	now := time.Now()
	mock := NewMockClient(
		WithSignedIn(Account{User: &models.User{ID: "u1"}}),
		WithBuilds([]models.Build{
			{ID: "old", UserID: "u1", Name: "Old", UpdatedAt: now.Add(-time.Hour)},
			{ID: "new", UserID: "u1", Name: "New", UpdatedAt: now},
			{ID: "theirs", UserID: "u2", Name: "Theirs", UpdatedAt: now},
			{ID: "tmpl", UserID: "u1", Name: "Template", IsTemplate: true, UpdatedAt: now},
		}),
	)
	ctx := context.Background()

	builds, err := mock.ListBuilds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(builds) != 2 || builds[0].ID != "new" || builds[1].ID != "old" {
		t.Errorf("expected own builds newest first, got %+v", builds)
	}

	public := true
	if _, err := mock.UpdateBuild(ctx, "theirs", BuildUpdate{IsPublic: &public}); !IsNotFound(err) {
		t.Errorf("expected another user's build to look missing, got %v", err)
	}
	updated, err := mock.UpdateBuild(ctx, "old", BuildUpdate{IsPublic: &public})
	if err != nil || !updated.IsPublic {
		t.Errorf("UpdateBuild: %v %+v", err, updated)
	}

	saved, err := mock.SaveBuild(ctx, NewBuild{Name: "Fresh"})
	if err != nil || saved.ID == "" || saved.UserID != "u1" {
		t.Fatalf("SaveBuild: %v %+v", err, saved)
	}
	if err := mock.DeleteBuild(ctx, saved.ID); err != nil {
		t.Errorf("DeleteBuild: %v", err)
	}
	if err := mock.DeleteBuild(ctx, saved.ID); !IsNotFound(err) {
		t.Errorf("expected second delete to fail, got %v", err)
	}
}

func TestMockClient_InjectedErrors(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockClient(
		WithSignedIn(Account{User: &models.User{ID: "u1"}}),
		WithListError(boom),
		WithSaveError(boom),
	)
	ctx := context.Background()

	if _, err := mock.ListBuilds(ctx); !errors.Is(err, boom) {
		t.Errorf("ListBuilds: expected boom, got %v", err)
	}
	if _, err := mock.SaveBuild(ctx, NewBuild{}); !errors.Is(err, boom) {
		t.Errorf("SaveBuild: expected boom, got %v", err)
	}

	signErr := NewMockClient(WithSignInError(boom))
	if _, err := signErr.SignIn(ctx, "a@example.com", "pw"); !errors.Is(err, boom) {
		t.Errorf("SignIn: expected boom, got %v", err)
	}
}
