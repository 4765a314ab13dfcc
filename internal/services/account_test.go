package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/auth"
	"github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository/mock"
	"github.com/Lukeeddleman/loadoutlab-site/internal/services"
	"github.com/Lukeeddleman/loadoutlab-site/internal/testutil"
)

func newAccountService(t *testing.T) (*services.AccountService, *auth.Auth) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	a := auth.New("test-secret", time.Hour)
	svc := services.NewAccountService(testutil.NewTestLogger(), repo, a)
	svc.SetHashCost(bcrypt.MinCost)
	return svc, a
}

func TestAccountService_SignUpAndSignIn(t *testing.T) {
	svc, a := newAccountService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, " shooter@example.com ", "correct-horse", services.ProfileMetadata{FullName: "Jordan Smith"})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if session.User.Email != "shooter@example.com" {
		t.Errorf("expected trimmed email, got %q", session.User.Email)
	}
	if session.Profile.FullName != "Jordan Smith" {
		t.Errorf("expected full name on profile, got %q", session.Profile.FullName)
	}
	if session.User.PasswordHash == "correct-horse" {
		t.Error("password stored in clear text")
	}

	claims, err := a.Parse(session.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID() != session.User.ID {
		t.Errorf("token subject %s != user %s", claims.UserID(), session.User.ID)
	}

	signedIn, err := svc.SignIn(ctx, "SHOOTER@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if signedIn.User.ID != session.User.ID {
		t.Errorf("signed in as a different user")
	}
}

func TestAccountService_SignUpValidation(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "long-enough", services.ErrInvalidEmail},
		{"bad email", "not-an-email", "long-enough", services.ErrInvalidEmail},
		{"display name form", "Jo <jo@example.com>", "long-enough", services.ErrInvalidEmail},
		{"short password", "jo@example.com", "short", services.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, services.ProfileMetadata{})
			if err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("expected validation kind, got %v", errors.KindOf(err))
			}
		})
	}
}

func TestAccountService_SignUpDuplicates(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "a@example.com", "password1", services.ProfileMetadata{Username: "ace"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	_, err := svc.SignUp(ctx, "A@example.com", "password2", services.ProfileMetadata{})
	if err != services.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	_, err = svc.SignUp(ctx, "b@example.com", "password2", services.ProfileMetadata{Username: "ACE"})
	if err != services.ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAccountService_SignInRejects(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	svc.SignUp(ctx, "a@example.com", "password1", services.ProfileMetadata{})

	if _, err := svc.SignIn(ctx, "a@example.com", "wrong-password"); err != services.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "password1"); err != services.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if !errors.Is(services.ErrInvalidCredentials, errors.ErrUnauthorized) {
		t.Error("invalid credentials should be an unauthorized error")
	}
}

func TestAccountService_SignOutRevokes(t *testing.T) {
	svc, a := newAccountService(t)
	session, _ := svc.SignUp(context.Background(), "a@example.com", "password1", services.ProfileMetadata{})

	svc.SignOut(session.Token)
	svc.SignOut("")

	if _, err := a.Parse(session.Token); err == nil {
		t.Error("expected token to be revoked after sign-out")
	}
}

func TestAccountService_CurrentUserAndProfile(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	session, _ := svc.SignUp(ctx, "a@example.com", "password1", services.ProfileMetadata{Username: "ace"})
	svc.SignUp(ctx, "b@example.com", "password1", services.ProfileMetadata{Username: "bee"})

	acct, err := svc.CurrentUser(ctx, session.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if acct.Profile.Username != "ace" {
		t.Errorf("expected username ace, got %q", acct.Profile.Username)
	}

	if _, err := svc.CurrentUser(ctx, "missing"); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	name := "  Ace Ventura "
	profile, err := svc.UpdateProfile(ctx, session.User.ID, services.ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if profile.FullName != "Ace Ventura" || profile.Username != "ace" {
		t.Errorf("unexpected profile %+v", profile)
	}

	taken := "bee"
	if _, err := svc.UpdateProfile(ctx, session.User.ID, services.ProfileUpdate{Username: &taken}); err != services.ErrUsernameTaken {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "missing", services.ProfileUpdate{}); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_RepositoryErrors(t *testing.T) {
	dbErr := stderrors.New("database error")
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	svc := services.NewAccountService(testutil.NewTestLogger(), repo, auth.New("s", time.Hour))
	svc.SetHashCost(bcrypt.MinCost)
	ctx := context.Background()

	repo.CreateUserError = dbErr
	if _, err := svc.SignUp(ctx, "a@example.com", "password1", services.ProfileMetadata{}); !stderrors.Is(err, dbErr) {
		t.Errorf("expected database error from SignUp, got %v", err)
	}

	repo.GetUserByEmailError = dbErr
	if _, err := svc.SignIn(ctx, "a@example.com", "password1"); !stderrors.Is(err, dbErr) {
		t.Errorf("expected database error from SignIn, got %v", err)
	}

	repo.GetUserError = dbErr
	if _, err := svc.CurrentUser(ctx, "u1"); !stderrors.Is(err, dbErr) {
		t.Errorf("expected database error from CurrentUser, got %v", err)
	}
}
