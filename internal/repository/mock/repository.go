package mock

import (
	"context"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateBuildError = errors.New("database error")
//	svc := services.NewBuildService(log, mockRepo, nil)
//	_, err := svc.SaveBuild(ctx, userID, req)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== User Errors =====
	CreateUserError     error
	GetUserError        error
	GetUserByEmailError error
	GetProfileError     error
	UpdateProfileError  error

	// ===== Build Errors =====
	CreateBuildError      error
	GetBuildError         error
	UpdateBuildError      error
	DeleteBuildError      error
	ListBuildsByUserError error
	ListPublicBuildsError error
	ListTemplatesError    error
	CountTemplatesError   error

	PingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== User Methods =====

func (m *Repository) CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, user, profile)
}

func (m *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	return m.FullRepository.GetUser(ctx, id)
}

func (m *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}
	return m.FullRepository.GetUserByEmail(ctx, email)
}

func (m *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if m.GetProfileError != nil {
		return nil, m.GetProfileError
	}
	return m.FullRepository.GetProfile(ctx, userID)
}

func (m *Repository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	if m.UpdateProfileError != nil {
		return m.UpdateProfileError
	}
	return m.FullRepository.UpdateProfile(ctx, profile)
}

// ===== Build Methods =====

func (m *Repository) CreateBuild(ctx context.Context, build *models.Build) error {
	if m.CreateBuildError != nil {
		return m.CreateBuildError
	}
	return m.FullRepository.CreateBuild(ctx, build)
}

func (m *Repository) GetBuild(ctx context.Context, id string) (*models.Build, error) {
	if m.GetBuildError != nil {
		return nil, m.GetBuildError
	}
	return m.FullRepository.GetBuild(ctx, id)
}

func (m *Repository) UpdateBuild(ctx context.Context, build *models.Build) error {
	if m.UpdateBuildError != nil {
		return m.UpdateBuildError
	}
	return m.FullRepository.UpdateBuild(ctx, build)
}

func (m *Repository) DeleteBuild(ctx context.Context, id string) error {
	if m.DeleteBuildError != nil {
		return m.DeleteBuildError
	}
	return m.FullRepository.DeleteBuild(ctx, id)
}

func (m *Repository) ListBuildsByUser(ctx context.Context, userID string) ([]models.Build, error) {
	if m.ListBuildsByUserError != nil {
		return nil, m.ListBuildsByUserError
	}
	return m.FullRepository.ListBuildsByUser(ctx, userID)
}

func (m *Repository) ListPublicBuilds(ctx context.Context, limit int) ([]models.Build, error) {
	if m.ListPublicBuildsError != nil {
		return nil, m.ListPublicBuildsError
	}
	return m.FullRepository.ListPublicBuilds(ctx, limit)
}

func (m *Repository) ListTemplates(ctx context.Context) ([]models.Build, error) {
	if m.ListTemplatesError != nil {
		return nil, m.ListTemplatesError
	}
	return m.FullRepository.ListTemplates(ctx)
}

func (m *Repository) CountTemplates(ctx context.Context) (int, error) {
	if m.CountTemplatesError != nil {
		return 0, m.CountTemplatesError
	}
	return m.FullRepository.CountTemplates(ctx)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}
