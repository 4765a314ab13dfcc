package forge

import (
	"fmt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// IncompatiblePartError is returned when a part does not fit the active platform
type IncompatiblePartError struct {
	Category models.CategoryKey
	PartID   string
	Platform models.PlatformConfiguration
	Reason   error
}

func (e *IncompatiblePartError) Error() string {
	msg := fmt.Sprintf("part %q cannot be used as %s on %s", e.PartID, e.Category, e.Platform)
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

func (e *IncompatiblePartError) Unwrap() error {
	return e.Reason
}

// UnconfiguredPlatformError is returned by strict stores when a part is chosen
// before any platform exists
type UnconfiguredPlatformError struct {
	Category models.CategoryKey
}

func (e *UnconfiguredPlatformError) Error() string {
	return fmt.Sprintf("choose a platform before selecting a %s", e.Category)
}

// UnknownCategoryError is returned for category keys the catalog does not define
type UnknownCategoryError struct {
	Category models.CategoryKey
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Category)
}

// LockedCategoryError is returned when a dependent category is chosen before
// its prerequisite
type LockedCategoryError struct {
	Category models.CategoryKey
	Requires models.CategoryKey
}

func (e *LockedCategoryError) Error() string {
	return fmt.Sprintf("select a %s before choosing a %s", e.Requires, e.Category)
}
