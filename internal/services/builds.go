package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/metrics"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
)

const (
	// PublicFeedLimit caps the community feed
	PublicFeedLimit = 50
	// RecentActivityWindow is how far back the dashboard counts updated builds
	RecentActivityWindow = 7 * 24 * time.Hour
)

// Broadcaster defines the interface for pushing build events to live clients
type Broadcaster interface {
	BroadcastBuildPublished(build models.Build)
	BroadcastBuildRemoved(buildID string)
}

// BuildService handles saved builds
type BuildService struct {
	log         logger.Logger
	repo        repository.BuildRepository
	catalog     *catalog.Catalog
	storeOpts   []forge.Option
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	baseURL     string
	now         func() time.Time
}

// NewBuildService creates a new BuildService. Saved configurations are
// validated with stores built from cat and opts.
func NewBuildService(log logger.Logger, repo repository.BuildRepository, cat *catalog.Catalog, opts ...forge.Option) *BuildService {
	return &BuildService{
		log:       log,
		repo:      repo,
		catalog:   cat,
		storeOpts: opts,
		now:       repository.Now,
	}
}

// SetBroadcaster sets the broadcaster for live feed updates
func (s *BuildService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics attaches build counters
func (s *BuildService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetBaseURL sets the public URL used in share links
func (s *BuildService) SetBaseURL(url string) {
	s.baseURL = strings.TrimSuffix(url, "/")
}

// NewBuild is the data needed to save a build
type NewBuild struct {
	Name          string                      `json:"name"`
	Description   string                      `json:"description,omitempty"`
	Configuration models.ConfigurationPayload `json:"configuration"`
	IsPublic      bool                        `json:"is_public"`
}

// BuildUpdate holds the mutable build fields; nil fields are left unchanged
type BuildUpdate struct {
	Name          *string                      `json:"name,omitempty"`
	Description   *string                      `json:"description,omitempty"`
	Configuration *models.ConfigurationPayload `json:"configuration,omitempty"`
	IsPublic      *bool                        `json:"is_public,omitempty"`
}

// normalize re-checks a payload against the catalog and recomputes its total
func (s *BuildService) normalize(payload models.ConfigurationPayload) (models.ConfigurationPayload, error) {
	store := forge.NewStore(s.catalog, s.storeOpts...)
	if err := store.Restore(payload); err != nil {
		var incompatible *forge.IncompatiblePartError
		var unknown *forge.UnknownCategoryError
		var locked *forge.LockedCategoryError
		var unconfigured *forge.UnconfiguredPlatformError
		if stderrors.As(err, &incompatible) || stderrors.As(err, &unknown) ||
			stderrors.As(err, &locked) || stderrors.As(err, &unconfigured) ||
			errors.Is(err, errors.ErrValidation) {
			return payload, err
		}
		return payload, errors.Wrap(err, errors.ErrValidation, "invalid configuration")
	}
	return store.Payload(), nil
}

// ListBuilds returns a user's own builds, most recently updated first
func (s *BuildService) ListBuilds(ctx context.Context, userID string) ([]models.Build, error) {
	return s.repo.ListBuildsByUser(ctx, userID)
}

// ListPublicBuilds returns the community feed
func (s *BuildService) ListPublicBuilds(ctx context.Context) ([]models.Build, error) {
	return s.repo.ListPublicBuilds(ctx, PublicFeedLimit)
}

// RecentPublicBuilds returns up to n of the newest public builds
func (s *BuildService) RecentPublicBuilds(ctx context.Context, n int) ([]models.Build, error) {
	if n <= 0 || n > PublicFeedLimit {
		n = PublicFeedLimit
	}
	return s.repo.ListPublicBuilds(ctx, n)
}

// ListTemplates returns the starter builds
func (s *BuildService) ListTemplates(ctx context.Context) ([]models.Build, error) {
	return s.repo.ListTemplates(ctx)
}

// GetBuild returns a build visible to viewerID. Public builds and templates
// are visible to everyone; private builds only to their owner.
func (s *BuildService) GetBuild(ctx context.Context, viewerID, id string) (*models.Build, error) {
	b, err := s.repo.GetBuild(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrBuildNotFound
	}
	if err != nil {
		return nil, err
	}
	if !b.IsPublic && !b.IsTemplate && (viewerID == "" || b.UserID != viewerID) {
		return nil, ErrBuildNotFound
	}
	return b, nil
}

// ownedBuild returns a build only if userID owns it
func (s *BuildService) ownedBuild(ctx context.Context, userID, id string) (*models.Build, error) {
	b, err := s.repo.GetBuild(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrBuildNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.IsTemplate || b.UserID != userID {
		return nil, ErrBuildNotFound
	}
	return b, nil
}

// SaveBuild stores a new build owned by userID
func (s *BuildService) SaveBuild(ctx context.Context, userID string, nb NewBuild) (*models.Build, error) {
	name := strings.TrimSpace(nb.Name)
	if name == "" {
		return nil, ErrBuildNameRequired
	}
	payload, err := s.normalize(nb.Configuration)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Build{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		Description:   strings.TrimSpace(nb.Description),
		Configuration: payload,
		IsPublic:      nb.IsPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateBuild(ctx, b); err != nil {
		return nil, err
	}

	s.metrics.RecordBuildSaved(b.IsPublic)
	s.log.Info("Build saved", "build_id", b.ID, "user_id", userID, "public", b.IsPublic)

	if b.IsPublic {
		s.publish(ctx, b.ID)
	}
	return b, nil
}

// UpdateBuild applies the non-nil fields of update to a build owned by userID
func (s *BuildService) UpdateBuild(ctx context.Context, userID, id string, update BuildUpdate) (*models.Build, error) {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	wasPublic := b.IsPublic

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrBuildNameRequired
		}
		b.Name = name
	}
	if update.Description != nil {
		b.Description = strings.TrimSpace(*update.Description)
	}
	if update.Configuration != nil {
		payload, err := s.normalize(*update.Configuration)
		if err != nil {
			return nil, err
		}
		b.Configuration = payload
	}
	if update.IsPublic != nil {
		b.IsPublic = *update.IsPublic
	}
	b.UpdatedAt = s.now()

	if err := s.repo.UpdateBuild(ctx, b); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrBuildNotFound
		}
		return nil, err
	}

	switch {
	case b.IsPublic && !wasPublic:
		s.publish(ctx, b.ID)
	case !b.IsPublic && wasPublic && s.broadcaster != nil:
		s.broadcaster.BroadcastBuildRemoved(b.ID)
	}
	return b, nil
}

// DeleteBuild removes a build owned by userID
func (s *BuildService) DeleteBuild(ctx context.Context, userID, id string) error {
	b, err := s.ownedBuild(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBuild(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return ErrBuildNotFound
		}
		return err
	}
	if b.IsPublic && s.broadcaster != nil {
		s.broadcaster.BroadcastBuildRemoved(id)
	}
	return nil
}

// publish re-reads the build so the feed carries the author profile
func (s *BuildService) publish(ctx context.Context, id string) {
	if s.broadcaster == nil {
		return
	}
	b, err := s.repo.GetBuild(ctx, id)
	if err != nil {
		s.log.Warn("Failed to load published build", "build_id", id, "error", err)
		return
	}
	s.broadcaster.BroadcastBuildPublished(*b)
}

// Stats summarises a user's builds for the account dashboard
func (s *BuildService) Stats(ctx context.Context, userID string) (*models.BuildStats, error) {
	builds, err := s.repo.ListBuildsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-RecentActivityWindow)
	stats := &models.BuildStats{TotalBuilds: len(builds)}
	for _, b := range builds {
		if b.IsPublic {
			stats.PublicBuilds++
		}
		stats.TotalValue += b.Configuration.Total
		if b.UpdatedAt.After(cutoff) {
			stats.RecentActivity++
		}
	}
	return stats, nil
}

// SeedTemplates stores the catalog's starter builds when none exist yet.
// It returns how many were created.
func (s *BuildService) SeedTemplates(ctx context.Context) (int, error) {
	existing, err := s.repo.CountTemplates(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	created := 0
	for _, t := range s.catalog.Templates() {
		payload, err := s.templatePayload(t)
		if err != nil {
			return created, fmt.Errorf("template %q: %w", t.Name, err)
		}

		now := s.now()
		b := &models.Build{
			ID:            uuid.NewString(),
			Name:          t.Name,
			Description:   t.Description,
			Configuration: payload,
			IsTemplate:    true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.CreateBuild(ctx, b); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.log.Info("Seeded build templates", "count", created)
	}
	return created, nil
}

// templatePayload assembles a template through a store so it obeys the same
// compatibility rules as a hand-made build
func (s *BuildService) templatePayload(t catalog.Template) (models.ConfigurationPayload, error) {
	store := forge.NewStore(s.catalog)
	if _, err := store.SetConfiguration(t.Platform); err != nil {
		return models.ConfigurationPayload{}, err
	}
	for _, key := range s.catalog.Keys() {
		id, ok := t.Parts[key]
		if !ok {
			continue
		}
		p, _ := s.catalog.Part(key, id)
		if err := store.SetSelectedPart(key, p); err != nil {
			return models.ConfigurationPayload{}, err
		}
	}
	return store.Payload(), nil
}

// ShareURL is the public link to a build
func (s *BuildService) ShareURL(id string) (string, error) {
	if s.baseURL == "" {
		return "", ErrBaseURLMissing
	}
	return fmt.Sprintf("%s/forge?build=%s", s.baseURL, id), nil
}

// ShareQR renders a PNG QR code for the share link of a build visible to viewerID
func (s *BuildService) ShareQR(ctx context.Context, viewerID, id string) ([]byte, error) {
	b, err := s.GetBuild(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	url, err := s.ShareURL(b.ID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(url, qrcode.Medium, 256)
}
