package handlers

import (
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/pricing"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

// CategoryInfo describes a category without its parts
type CategoryInfo struct {
	Key      models.CategoryKey `json:"key"`
	Name     string             `json:"name"`
	Required bool               `json:"required"`
	Requires models.CategoryKey `json:"requires,omitempty"`
}

// CatalogResponse lists the categories in build order
type CatalogResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

// PartsResponse is a filtered part list with the facets the selector needs
type PartsResponse struct {
	Category models.CategoryKey `json:"category"`
	Parts    []models.Part      `json:"parts"`
	Brands   []string           `json:"brands"`
	MaxPrice models.Money       `json:"max_price"`
	Locked   bool               `json:"locked,omitempty"`
}

// ForgeResponse is the session's build: store state plus the summary
type ForgeResponse struct {
	forge.Snapshot
	Summary pricing.Summary      `json:"summary"`
	Reset   []models.CategoryKey `json:"reset,omitempty"`
}

// QuestionnaireResponse is the current questionnaire step
type QuestionnaireResponse struct {
	State            questionnaire.State    `json:"state"`
	FirearmType      models.FirearmType     `json:"firearm_type,omitempty"`
	SubType          models.SubType         `json:"sub_type,omitempty"`
	Options          []questionnaire.Choice `json:"options,omitempty"`
	StartingCategory models.CategoryKey     `json:"starting_category,omitempty"`
	Advanced         *bool                  `json:"advanced,omitempty"`
	Result           *questionnaire.Result  `json:"result,omitempty"`
}

// CandidatesResponse lists starting parts for the chosen platform
type CandidatesResponse struct {
	Category models.CategoryKey `json:"category"`
	Parts    []models.Part      `json:"parts"`
	Brands   []string           `json:"brands"`
	MaxPrice models.Money       `json:"max_price"`
}

// BuildsResponse wraps a build list
type BuildsResponse struct {
	Builds []models.Build `json:"builds"`
}

func newCatalogResponse(cat *catalog.Catalog) CatalogResponse {
	cats := cat.Categories()
	out := CatalogResponse{Categories: make([]CategoryInfo, 0, len(cats))}
	for _, c := range cats {
		out.Categories = append(out.Categories, CategoryInfo{
			Key:      c.Key,
			Name:     c.Name,
			Required: c.Required,
			Requires: c.Requires,
		})
	}
	return out
}

func newBuildsResponse(builds []models.Build) BuildsResponse {
	if builds == nil {
		builds = []models.Build{}
	}
	return BuildsResponse{Builds: builds}
}
