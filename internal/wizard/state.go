// Package wizard implements the outbound declaration wizard as an immutable
// state snapshot transformed by pure reducer functions. Side effects such as
// timers, storage, network calls and notification delivery are performed by
// the caller (see services.WizardService); reducers only describe them.
package wizard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

type Source string

const (
	SourceExistingBased Source = "existing"
	SourceFresh         Source = "fresh"
)

// IsValid reports whether s is a known declaration source.
func (s Source) IsValid() bool {
	return s == SourceExistingBased || s == SourceFresh
}

type Step int

const (
	StepSource Step = iota + 1
	StepDetails
	StepUpload
	StepCustomer
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepSource:
		return "source"
	case StepDetails:
		return "details"
	case StepUpload:
		return "upload"
	case StepCustomer:
		return "customer"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var ErrUnknownSource = errors.New("unknown declaration source")

type ReferenceNumbers struct {
	CustomerPO string `json:"customerPO"`
	SalesOrder string `json:"salesOrder"`
	Shipment   string `json:"shipment"`
}

// Draft is the transient data collected by one wizard instance.
type Draft struct {
	Source         Source           `json:"source"`
	BasedOnIDs     []int64          `json:"basedOnIds"`
	Items          []LineItem       `json:"items"`
	ValidityPreset ValidityPreset   `json:"validityPreset"`
	StartDate      *time.Time       `json:"startDate"`
	EndDate        *time.Time       `json:"endDate"`
	Geo            *GeoValidation   `json:"geoValidation,omitempty"`
	Documents      []string         `json:"documents"`
	CustomerID     *int64           `json:"customerId"`
	References     ReferenceNumbers `json:"referenceNumbers"`
	Comments       string           `json:"comments"`
}

// State is the full snapshot of a wizard instance. InstanceID changes on every
// reset so that asynchronous completions started by a previous instance can be
// recognised and dropped.
type State struct {
	SessionID      string `json:"sessionId"`
	InstanceID     string `json:"instanceId"`
	OwnerID        string `json:"ownerId"`
	CurrentStep    Step   `json:"currentStep"`
	CompletedSteps []Step `json:"completedSteps"`
	GeoRuns        int    `json:"geoRuns"`
	Draft          Draft  `json:"draft"`
}

func newDraft() Draft {
	return Draft{
		Source:     SourceFresh,
		BasedOnIDs: []int64{},
		Items:      []LineItem{NewLineItem()},
		Documents:  []string{},
	}
}

// New returns the initial state of a freshly opened wizard.
func New(sessionID, instanceID, ownerID string) State {
	return State{
		SessionID:      sessionID,
		InstanceID:     instanceID,
		OwnerID:        ownerID,
		CurrentStep:    StepSource,
		CompletedSteps: []Step{},
		Draft:          newDraft(),
	}
}

// Close resets the wizard to its initial state under a new instance id,
// discarding every draft field.
func Close(s State, newInstanceID string) State {
	return New(s.SessionID, newInstanceID, s.OwnerID)
}

// IsCompleted reports whether step has been passed at least once.
func (s State) IsCompleted(step Step) bool {
	return slices.Contains(s.CompletedSteps, step)
}

func (s State) clone() State {
	out := s
	out.CompletedSteps = slices.Clone(s.CompletedSteps)
	out.Draft = s.Draft.clone()
	return out
}

func (d Draft) clone() Draft {
	out := d
	out.BasedOnIDs = slices.Clone(d.BasedOnIDs)
	out.Items = slices.Clone(d.Items)
	out.Documents = slices.Clone(d.Documents)
	if d.StartDate != nil {
		t := *d.StartDate
		out.StartDate = &t
	}
	if d.EndDate != nil {
		t := *d.EndDate
		out.EndDate = &t
	}
	if d.Geo != nil {
		g := *d.Geo
		out.Geo = &g
	}
	if d.CustomerID != nil {
		id := *d.CustomerID
		out.CustomerID = &id
	}
	return out
}

// SetSource switches the declaration source. Geo validation only belongs to
// fresh declarations, so switching away from fresh discards it.
func SetSource(s State, source Source) (State, error) {
	if !source.IsValid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	out := s.clone()
	out.Draft.Source = source
	if source != SourceFresh {
		out.Draft.Geo = nil
	}
	return out, nil
}

// SetBasedOn replaces the selected prior declarations. Non-positive ids are
// dropped and duplicates collapse, so the result is a set.
func SetBasedOn(s State, ids []int64) State {
	out := s.clone()
	selected := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			selected = append(selected, id)
		}
	}
	slices.Sort(selected)
	out.Draft.BasedOnIDs = slices.Compact(selected)
	return out
}

// AddDocument adds an uploaded evidence identifier to the draft. Blank and
// duplicate identifiers are ignored.
func AddDocument(s State, identifier string) State {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || slices.Contains(s.Draft.Documents, identifier) {
		return s
	}
	out := s.clone()
	out.Draft.Documents = append(out.Draft.Documents, identifier)
	return out
}

// RemoveDocument drops identifier from the draft's evidence documents.
func RemoveDocument(s State, identifier string) State {
	idx := slices.Index(s.Draft.Documents, identifier)
	if idx < 0 {
		return s
	}
	out := s.clone()
	out.Draft.Documents = slices.Delete(out.Draft.Documents, idx, idx+1)
	return out
}

// SelectCustomer sets the customer of the declaration. A non-positive id
// clears the selection.
func SelectCustomer(s State, customerID int64) State {
	out := s.clone()
	if customerID <= 0 {
		out.Draft.CustomerID = nil
		return out
	}
	out.Draft.CustomerID = &customerID
	return out
}

// SetReferences replaces the reference numbers.
func SetReferences(s State, refs ReferenceNumbers) State {
	out := s.clone()
	out.Draft.References = refs
	return out
}

// SetComments replaces the free-text comments.
func SetComments(s State, comments string) State {
	out := s.clone()
	out.Draft.Comments = comments
	return out
}
