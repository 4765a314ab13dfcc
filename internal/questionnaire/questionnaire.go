// Package questionnaire walks a visitor from firearm type to sub-type to an
// optional starting component, producing the platform a build starts from.
package questionnaire

import (
	"errors"
	"fmt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/compat"
	apperrors "github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// State is a step of the questionnaire
type State int

const (
	ChoosingPlatformType State = iota
	ChoosingSubType
	ChoosingStartingComponent
	Complete
)

func (s State) String() string {
	switch s {
	case ChoosingPlatformType:
		return "choosing_platform_type"
	case ChoosingSubType:
		return "choosing_sub_type"
	case ChoosingStartingComponent:
		return "choosing_starting_component"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrWrongState is returned when an action does not belong to the current step
var ErrWrongState = errors.New("questionnaire: action not allowed at this step")

// Only these options are built out; everything else is shown as coming soon.
var (
	availableFirearmTypes = map[models.FirearmType]bool{models.Rifle: true}
	availableSubTypes     = map[models.SubType]bool{models.AR15: true}

	// category offered as the first part for a platform
	startingCategory = map[models.SubType]models.CategoryKey{
		models.AR15: models.CategoryLower,
	}
)

var labels = map[string]string{
	string(models.Rifle):        "Rifle",
	string(models.Pistol):       "Pistol",
	string(models.Shotgun):      "Shotgun",
	string(models.AR15):         "AR-15",
	string(models.AR10):         "AR-10",
	string(models.BoltAction):   "Bolt Action",
	string(models.Striker):      "Striker Fired",
	string(models.Hammer):       "Hammer Fired",
	string(models.SingleAction): "Single Action",
	string(models.Pump):         "Pump Action",
	string(models.SemiAuto):     "Semi-Auto",
	string(models.BreakAction):  "Break Action",
}

// Choice is one selectable option at the current step
type Choice struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// Result is what a completed questionnaire hands to the store
type Result struct {
	Platform     models.PlatformConfiguration `json:"platform"`
	StartingPart *models.Part                 `json:"starting_part,omitempty"`
	Category     models.CategoryKey           `json:"category,omitempty"`
}

// Workflow is a single run of the questionnaire. Not safe for concurrent use.
type Workflow struct {
	catalog      *catalog.Catalog
	state        State
	firearmType  models.FirearmType
	subType      models.SubType
	startingPart *models.Part
}

// New starts a questionnaire at the firearm type step
func New(cat *catalog.Catalog) *Workflow {
	return &Workflow{catalog: cat}
}

// State returns the current step
func (w *Workflow) State() State {
	return w.state
}

// FirearmType returns the chosen firearm type, empty before the first step
func (w *Workflow) FirearmType() models.FirearmType {
	return w.firearmType
}

// SubType returns the chosen sub-type, empty before the second step
func (w *Workflow) SubType() models.SubType {
	return w.subType
}

// Options lists the choices for the current step. Steps without choices
// return nil.
func (w *Workflow) Options() []Choice {
	switch w.state {
	case ChoosingPlatformType:
		out := make([]Choice, 0, len(models.FirearmTypes))
		for _, ft := range models.FirearmTypes {
			out = append(out, Choice{Value: string(ft), Label: labels[string(ft)], Available: availableFirearmTypes[ft]})
		}
		return out
	case ChoosingSubType:
		subs := w.firearmType.SubTypes()
		out := make([]Choice, 0, len(subs))
		for _, st := range subs {
			out = append(out, Choice{Value: string(st), Label: labels[string(st)], Available: availableSubTypes[st]})
		}
		return out
	}
	return nil
}

// SelectFirearmType records ft and advances when it is built out. Options that
// are coming soon leave the workflow where it is and return false.
func (w *Workflow) SelectFirearmType(ft models.FirearmType) (bool, error) {
	if w.state != ChoosingPlatformType {
		return false, fmt.Errorf("%w: select firearm type while %s", ErrWrongState, w.state)
	}
	if !ft.Valid() {
		return false, apperrors.Validationf("unknown firearm type %q", ft)
	}
	if !availableFirearmTypes[ft] {
		return false, nil
	}
	w.firearmType = ft
	w.state = ChoosingSubType
	return true, nil
}

// SelectSubType records st and advances when it is built out
func (w *Workflow) SelectSubType(st models.SubType) (bool, error) {
	if w.state != ChoosingSubType {
		return false, fmt.Errorf("%w: select sub-type while %s", ErrWrongState, w.state)
	}
	if !w.firearmType.Allows(st) {
		return false, apperrors.Validationf("%q is not a %s sub-type", st, w.firearmType)
	}
	if !availableSubTypes[st] {
		return false, nil
	}
	w.subType = st
	if _, ok := startingCategory[st]; ok {
		w.state = ChoosingStartingComponent
	} else {
		w.state = Complete
	}
	return true, nil
}

// StartingCategory is the category offered at the starting component step
func (w *Workflow) StartingCategory() (models.CategoryKey, bool) {
	key, ok := startingCategory[w.subType]
	return key, ok
}

func (w *Workflow) pendingPlatform() *models.PlatformConfiguration {
	return &models.PlatformConfiguration{FirearmType: w.firearmType, SubType: w.subType}
}

// Candidates returns the starting parts that fit the chosen platform and pass
// filter. The sentinel is left out; skipping covers it.
func (w *Workflow) Candidates(filter catalog.Filter) ([]models.Part, error) {
	if w.state != ChoosingStartingComponent {
		return nil, fmt.Errorf("%w: list candidates while %s", ErrWrongState, w.state)
	}
	key, _ := w.StartingCategory()

	var parts []models.Part
	for _, p := range compat.Filter(w.catalog.Parts(key), w.pendingPlatform()) {
		if !p.IsSentinel() {
			parts = append(parts, p)
		}
	}
	return filter.Apply(parts), nil
}

// SelectStartingPart picks a candidate by ID and completes the questionnaire
func (w *Workflow) SelectStartingPart(partID string) error {
	if w.state != ChoosingStartingComponent {
		return fmt.Errorf("%w: select starting part while %s", ErrWrongState, w.state)
	}
	key, _ := w.StartingCategory()

	p, ok := w.catalog.Part(key, partID)
	if !ok || p.IsSentinel() {
		return apperrors.NotFoundf("no %s with id %q", key, partID)
	}
	if err := compat.Check(p.Compatibility, w.pendingPlatform()); err != nil {
		return &forge.IncompatiblePartError{Category: key, PartID: p.ID, Platform: *w.pendingPlatform(), Reason: err}
	}

	w.startingPart = &p
	w.state = Complete
	return nil
}

// Skip completes the questionnaire without a starting part
func (w *Workflow) Skip() error {
	if w.state != ChoosingStartingComponent {
		return fmt.Errorf("%w: skip while %s", ErrWrongState, w.state)
	}
	w.startingPart = nil
	w.state = Complete
	return nil
}

// Back returns to the previous step, forgetting the choice made there.
// It is a no-op at the first step and once complete.
func (w *Workflow) Back() State {
	switch w.state {
	case ChoosingSubType:
		w.firearmType = ""
		w.state = ChoosingPlatformType
	case ChoosingStartingComponent:
		w.subType = ""
		w.state = ChoosingSubType
	}
	return w.state
}

// Restart returns the workflow to its first step
func (w *Workflow) Restart() {
	*w = Workflow{catalog: w.catalog}
}

// Result returns the finished platform and optional starting part
func (w *Workflow) Result() (Result, error) {
	if w.state != Complete {
		return Result{}, fmt.Errorf("%w: result while %s", ErrWrongState, w.state)
	}
	r := Result{Platform: *w.pendingPlatform()}
	if w.startingPart != nil {
		p := w.startingPart.Clone()
		r.StartingPart = &p
		r.Category, _ = w.StartingCategory()
	}
	return r, nil
}

// Apply hands the result to store: the platform first, then the starting part.
// When the store refuses either, it is put back as it was and the workflow
// reopens the step it was completed from.
func (w *Workflow) Apply(store *forge.Store) (Result, error) {
	r, err := w.Result()
	if err != nil {
		return Result{}, err
	}
	before := store.Payload()
	if err := w.apply(store, r); err != nil {
		if rerr := store.Restore(before); rerr != nil {
			return Result{}, errors.Join(err, rerr)
		}
		w.reopen()
		return Result{}, err
	}
	return r, nil
}

func (w *Workflow) apply(store *forge.Store, r Result) error {
	if _, err := store.SetConfiguration(r.Platform); err != nil {
		return err
	}
	if r.StartingPart != nil {
		return store.SetSelectedPart(r.Category, *r.StartingPart)
	}
	return nil
}

// reopen undoes completion: back to the starting component step, or to the
// sub-type step when the platform has none
func (w *Workflow) reopen() {
	if w.state != Complete {
		return
	}
	w.startingPart = nil
	if _, ok := w.StartingCategory(); ok {
		w.state = ChoosingStartingComponent
		return
	}
	w.subType = ""
	w.state = ChoosingSubType
}
