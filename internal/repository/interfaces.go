package repository

import (
	"context"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// UserRepository defines account and profile data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

// BuildRepository defines saved build data operations
type BuildRepository interface {
	CreateBuild(ctx context.Context, build *models.Build) error
	GetBuild(ctx context.Context, id string) (*models.Build, error)
	UpdateBuild(ctx context.Context, build *models.Build) error
	DeleteBuild(ctx context.Context, id string) error
	ListBuildsByUser(ctx context.Context, userID string) ([]models.Build, error)
	ListPublicBuilds(ctx context.Context, limit int) ([]models.Build, error)
	ListTemplates(ctx context.Context) ([]models.Build, error)
	CountTemplates(ctx context.Context) (int, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	UserRepository
	BuildRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
