package services

import (
	"context"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// AccountServicer defines the interface for account operations
type AccountServicer interface {
	SignUp(ctx context.Context, email, password string, meta ProfileMetadata) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(token string)
	CurrentUser(ctx context.Context, userID string) (*Account, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.Profile, error)
}

// BuildServicer defines the interface for saved build operations
type BuildServicer interface {
	ListBuilds(ctx context.Context, userID string) ([]models.Build, error)
	ListPublicBuilds(ctx context.Context) ([]models.Build, error)
	RecentPublicBuilds(ctx context.Context, n int) ([]models.Build, error)
	ListTemplates(ctx context.Context) ([]models.Build, error)
	GetBuild(ctx context.Context, viewerID, id string) (*models.Build, error)
	SaveBuild(ctx context.Context, userID string, nb NewBuild) (*models.Build, error)
	UpdateBuild(ctx context.Context, userID, id string, update BuildUpdate) (*models.Build, error)
	DeleteBuild(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*models.BuildStats, error)
	SeedTemplates(ctx context.Context) (int, error)
	ShareQR(ctx context.Context, viewerID, id string) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ AccountServicer = (*AccountService)(nil)
	_ BuildServicer   = (*BuildService)(nil)
)
