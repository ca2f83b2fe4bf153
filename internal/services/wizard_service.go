package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"declaration-service/internal/config"
	"declaration-service/internal/geocheck"
	"declaration-service/internal/models"
	"declaration-service/internal/repository"
	"declaration-service/internal/wizard"
	"declaration-service/internal/worker"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard session not found")

type SessionStore interface {
	Save(ctx context.Context, state wizard.State) error
	Load(ctx context.Context, sessionID string) (wizard.State, error)
}

// DeclarationCreator is the create-declaration boundary the wizard submits to.
type DeclarationCreator interface {
	CreateOutbound(ctx context.Context, userID string, req models.CreateDeclarationRequest) (*models.Declaration, error)
}

type CustomerLookup interface {
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
}

type JobScheduler interface {
	SubmitAfter(delay time.Duration, job worker.Job)
}

// WizardResult is the outcome of a wizard operation: the snapshot after the
// operation and the notifications it produced.
type WizardResult struct {
	State         wizard.State          `json:"state"`
	Notifications []models.Notification `json:"notifications"`
	Declaration   *models.Declaration   `json:"declaration,omitempty"`
}

// WizardService hosts wizard sessions. Every operation loads the session
// snapshot, applies a reducer and persists the result while holding the
// session lock. Geo validation results arrive asynchronously through the
// scheduler and are applied the same way.
type WizardService struct {
	store     SessionStore
	documents *DocumentService
	validator geocheck.Validator
	scheduler JobScheduler
	creator   DeclarationCreator
	customers CustomerLookup
	sink      NotificationSink
	cfg       config.WizardConfig

	locks *sessionLocks
	now   func() time.Time
	newID func() string
}

// NewWizardService creates a new wizard service
func NewWizardService(
	store SessionStore,
	documents *DocumentService,
	validator geocheck.Validator,
	scheduler JobScheduler,
	creator DeclarationCreator,
	customers CustomerLookup,
	sink NotificationSink,
	cfg config.WizardConfig,
) *WizardService {
	if sink == nil {
		sink = LogNotificationSink{}
	}
	return &WizardService{
		store:     store,
		documents: documents,
		validator: validator,
		scheduler: scheduler,
		creator:   creator,
		customers: customers,
		sink:      sink,
		cfg:       cfg,
		locks:     newSessionLocks(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ============================================================================
// SESSION LIFECYCLE
// ============================================================================

// Open starts a new wizard session owned by userID.
func (s *WizardService) Open(ctx context.Context, userID string) (wizard.State, error) {
	state := wizard.New(s.newID(), s.newID(), userID)
	if err := s.store.Save(ctx, state); err != nil {
		return wizard.State{}, fmt.Errorf("failed to open wizard: %w", err)
	}
	slog.Info("wizard opened", "session_id", state.SessionID, "user_id", userID)
	return state, nil
}

func (s *WizardService) Get(ctx context.Context, userID, sessionID string) (wizard.State, error) {
	return s.load(ctx, userID, sessionID)
}

// Close discards the draft and resets the session to step 1 under a new
// instance id. Pending geo results for the old instance are dropped.
func (s *WizardService) Close(ctx context.Context, userID, sessionID string) (WizardResult, error) {
	return s.mutate(ctx, userID, sessionID, func(st wizard.State) (wizard.State, []models.Notification, error) {
		return wizard.Close(st, s.newID()), nil, nil
	})
}

// ============================================================================
// DRAFT EDITING
// ============================================================================

// SetSource switches the declaration source. Leaving fresh drops any geo
// validation of the draft.
func (s *WizardService) SetSource(ctx context.Context, userID, sessionID string, source wizard.Source) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SetSource(st, source)
	})
}

func (s *WizardService) SetBasedOn(ctx context.Context, userID, sessionID string, ids []int64) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SetBasedOn(st, ids), nil
	})
}

func (s *WizardService) AddItem(ctx context.Context, userID, sessionID string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.AddItem(st), nil
	})
}

func (s *WizardService) UpdateItem(ctx context.Context, userID, sessionID, itemID string, field wizard.ItemField, value string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.UpdateItem(st, itemID, field, value), nil
	})
}

// RemoveItem refuses to remove the last remaining line item.
func (s *WizardService) RemoveItem(ctx context.Context, userID, sessionID, itemID string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		if len(st.Draft.Items) <= 1 {
			return st, &wizard.BlockedError{
				Kind:    wizard.KindValidationBlocked,
				Step:    st.CurrentStep,
				Title:   "Validation Error",
				Message: "At least one product line is required.",
			}
		}
		return wizard.RemoveItem(st, itemID), nil
	})
}

func (s *WizardService) SelectPreset(ctx context.Context, userID, sessionID string, preset wizard.ValidityPreset) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SelectPreset(st, preset, s.now())
	})
}

func (s *WizardService) SetCustomDates(ctx context.Context, userID, sessionID string, start, end *time.Time) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SetCustomDates(st, start, end), nil
	})
}

// SelectCustomer requires customerID to exist in the customer directory. A
// non-positive id clears the selection.
func (s *WizardService) SelectCustomer(ctx context.Context, userID, sessionID string, customerID int64) (WizardResult, error) {
	if customerID > 0 && s.customers != nil {
		if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return WizardResult{}, err
			}
			return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
				return st, &wizard.BlockedError{
					Kind:    wizard.KindValidationBlocked,
					Step:    st.CurrentStep,
					Title:   "Validation Error",
					Message: "The selected customer does not exist.",
				}
			})
		}
	}
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SelectCustomer(st, customerID), nil
	})
}

func (s *WizardService) SetReferences(ctx context.Context, userID, sessionID string, refs wizard.ReferenceNumbers) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SetReferences(st, refs), nil
	})
}

func (s *WizardService) SetComments(ctx context.Context, userID, sessionID, comments string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.SetComments(st, comments), nil
	})
}

// ============================================================================
// UPLOADS
// ============================================================================

// UploadDocument validates and stores an evidence document and adds it to the
// draft.
func (s *WizardService) UploadDocument(ctx context.Context, userID, sessionID, fileName string, data []byte) (WizardResult, error) {
	state, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return WizardResult{}, err
	}

	objectName, err := s.documents.StoreEvidence(ctx, sessionID, fileName, data)
	if err != nil {
		return s.uploadFailed(ctx, userID, sessionID, err)
	}

	result, err := s.mutate(ctx, userID, sessionID, func(st wizard.State) (wizard.State, []models.Notification, error) {
		if st.InstanceID != state.InstanceID {
			return st, nil, uploadDiscarded(st)
		}
		return wizard.AddDocument(st, objectName), []models.Notification{
			models.NewNotification("Document uploaded", fileName+" was added as evidence."),
		}, nil
	})
	if err != nil {
		s.discardObject(ctx, sessionID, objectName, s.documents.DeleteEvidence)
	}
	return result, err
}

// RemoveDocument removes an evidence document from the draft and deletes the
// stored object. Only documents attached to this draft can be removed.
func (s *WizardService) RemoveDocument(ctx context.Context, userID, sessionID, objectName string) (WizardResult, error) {
	result, err := s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		if !slices.Contains(st.Draft.Documents, objectName) {
			return st, &wizard.BlockedError{
				Kind:    wizard.KindValidationBlocked,
				Step:    st.CurrentStep,
				Title:   "Document not found",
				Message: "The document is not attached to this declaration.",
			}
		}
		return wizard.RemoveDocument(st, objectName), nil
	})
	if err != nil {
		return result, err
	}

	s.discardObject(ctx, sessionID, objectName, s.documents.DeleteEvidence)
	return result, nil
}

// UploadGeoJSON stores the plot file, restarts geo validation and schedules
// the geometry check. Only fresh declarations carry geo validation.
func (s *WizardService) UploadGeoJSON(ctx context.Context, userID, sessionID, fileName string, data []byte) (WizardResult, error) {
	state, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return WizardResult{}, err
	}
	if err := wizard.CheckGeoUpload(state); err != nil {
		return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
			return st, wizard.CheckGeoUpload(st)
		})
	}

	objectName, err := s.documents.StoreGeoJSON(ctx, sessionID, fileName, data)
	if err != nil {
		return s.uploadFailed(ctx, userID, sessionID, err)
	}

	var instanceID string
	var run int
	result, err := s.mutate(ctx, userID, sessionID, func(st wizard.State) (wizard.State, []models.Notification, error) {
		if st.InstanceID != state.InstanceID {
			return st, nil, uploadDiscarded(st)
		}
		if err := wizard.CheckGeoUpload(st); err != nil {
			return st, nil, err
		}
		out := wizard.StartGeoUpload(st, fileName, objectName)
		instanceID, run = out.InstanceID, out.Draft.Geo.Run
		return out, []models.Notification{
			models.NewNotification("GeoJSON uploaded", "Validating plot geometry for "+fileName+"."),
		}, nil
	})
	if err != nil {
		s.discardObject(ctx, sessionID, objectName, s.documents.DeleteGeoJSON)
		return result, err
	}

	// sessionID may alias a request buffer that is reused after the handler returns
	s.scheduler.SubmitAfter(s.cfg.GeometryDelay, s.geometryJob(strings.Clone(sessionID), instanceID, run, data))
	return result, nil
}

// uploadFailed reports a rejected upload as a blocked operation. Storage
// errors are returned as they are.
func (s *WizardService) uploadFailed(ctx context.Context, userID, sessionID string, err error) (WizardResult, error) {
	if !errors.Is(err, ErrInvalidDocument) {
		return WizardResult{}, err
	}
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return st, &wizard.BlockedError{
			Kind:    wizard.KindValidationBlocked,
			Step:    st.CurrentStep,
			Title:   "Upload failed",
			Message: err.Error(),
		}
	})
}

// uploadDiscarded is returned when the wizard was reset while a file was
// being stored.
func uploadDiscarded(st wizard.State) error {
	return &wizard.BlockedError{
		Kind:    wizard.KindValidationBlocked,
		Step:    st.CurrentStep,
		Title:   "Upload discarded",
		Message: "The wizard was reset before the upload completed. Please upload the file again.",
	}
}

func (s *WizardService) discardObject(
	ctx context.Context,
	sessionID, objectName string,
	remove func(context.Context, string) error,
) {
	if err := remove(ctx, objectName); err != nil {
		slog.Warn("failed to delete stored object", "session_id", sessionID, "object", objectName, "error", err)
	}
}

func (s *WizardService) geometryJob(sessionID, instanceID string, run int, data []byte) worker.Job {
	return func(ctx context.Context) error {
		outcome := s.runCheck(ctx, "geometry", sessionID, s.validator.ValidateGeometry, data)

		state, applied, err := s.resolveGeo(ctx, sessionID, instanceID, func(st wizard.State) (wizard.State, []models.Notification) {
			return wizard.ResolveGeometry(st, run, outcome)
		})
		if err != nil || !applied {
			return err
		}

		if state.Draft.Geo.Phase() == wizard.GeoSatellitePending {
			s.scheduler.SubmitAfter(s.cfg.SatelliteDelay, s.satelliteJob(sessionID, instanceID, run, data))
		}
		return nil
	}
}

func (s *WizardService) satelliteJob(sessionID, instanceID string, run int, data []byte) worker.Job {
	return func(ctx context.Context) error {
		outcome := s.runCheck(ctx, "satellite", sessionID, s.validator.ValidateSatellite, data)

		_, _, err := s.resolveGeo(ctx, sessionID, instanceID, func(st wizard.State) (wizard.State, []models.Notification) {
			return wizard.ResolveSatellite(st, run, outcome)
		})
		return err
	}
}

// runCheck maps a provider error to a failed stage.
func (s *WizardService) runCheck(
	ctx context.Context,
	stage, sessionID string,
	check func(context.Context, []byte) (models.CheckOutcome, error),
	data []byte,
) models.CheckOutcome {
	outcome, err := check(ctx, data)
	if err != nil {
		slog.Error("geo validation provider failed, treating as fail",
			"stage", stage,
			"session_id", sessionID,
			"error", err)
		return models.CheckFail
	}
	slog.Info("geo validation stage resolved", "stage", stage, "session_id", sessionID, "outcome", outcome)
	return outcome
}

// resolveGeo applies an asynchronous geo result. It reports applied=false
// when the session is gone, was reset, or the reducer ignored the result.
func (s *WizardService) resolveGeo(
	ctx context.Context,
	sessionID, instanceID string,
	resolve func(wizard.State) (wizard.State, []models.Notification),
) (wizard.State, bool, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Debug("dropping geo result for missing session", "session_id", sessionID)
			return wizard.State{}, false, nil
		}
		return wizard.State{}, false, err
	}
	if state.InstanceID != instanceID {
		slog.Debug("dropping geo result for reset wizard", "session_id", sessionID)
		return state, false, nil
	}

	next, notes := resolve(state)
	if len(notes) == 0 {
		return state, false, nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return state, false, fmt.Errorf("failed to save geo result: %w", err)
	}
	s.notify(ctx, next.OwnerID, notes)
	return next, true, nil
}

// ============================================================================
// NAVIGATION AND SUBMISSION
// ============================================================================

func (s *WizardService) Advance(ctx context.Context, userID, sessionID string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, wizard.Advance)
}

func (s *WizardService) GoBack(ctx context.Context, userID, sessionID string) (WizardResult, error) {
	return s.apply(ctx, userID, sessionID, func(st wizard.State) (wizard.State, error) {
		return wizard.GoBack(st), nil
	})
}

// Submit builds the payload and hands it to the create boundary. On success
// the wizard is reset; on failure the draft is kept so the user can retry.
func (s *WizardService) Submit(ctx context.Context, userID, sessionID string) (WizardResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return WizardResult{}, err
	}

	req, err := wizard.Submit(state)
	if err != nil {
		return s.blocked(ctx, state, err)
	}

	declaration, err := s.creator.CreateOutbound(ctx, state.OwnerID, req)
	if err != nil {
		slog.Error("declaration submission failed", "session_id", sessionID, "error", err)
		failure := &wizard.BlockedError{
			Kind:    wizard.KindSubmissionFailed,
			Step:    state.CurrentStep,
			Title:   "Submission failed",
			Message: "The declaration could not be created. Please try again.",
		}
		if errors.Is(err, ErrInvalidDeclaration) {
			failure.Kind = wizard.KindValidationBlocked
			failure.Message = err.Error()
		}
		return s.blocked(ctx, state, failure)
	}

	// the declaration already exists, so a failed reset is only logged
	next := wizard.Close(state, s.newID())
	if err := s.store.Save(ctx, next); err != nil {
		slog.Error("declaration created but wizard reset failed",
			"session_id", sessionID,
			"declaration_id", declaration.ID,
			"error", err)
	}

	notes := []models.Notification{models.NewNotification(
		"Declaration submitted",
		fmt.Sprintf("Outbound declaration #%d was created with status %s.", declaration.ID, declaration.Status),
	)}
	s.notify(ctx, state.OwnerID, notes)

	slog.Info("declaration submitted",
		"session_id", sessionID,
		"declaration_id", declaration.ID,
		"status", declaration.Status)
	return WizardResult{State: next, Notifications: notes, Declaration: declaration}, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *WizardService) load(ctx context.Context, userID, sessionID string) (wizard.State, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.loadOwned(ctx, userID, sessionID)
}

// loadOwned must be called with the session lock held. A session owned by
// another user is reported as not found.
func (s *WizardService) loadOwned(ctx context.Context, userID, sessionID string) (wizard.State, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return wizard.State{}, ErrSessionNotFound
		}
		return wizard.State{}, err
	}
	if state.OwnerID != userID {
		return wizard.State{}, ErrSessionNotFound
	}
	return state, nil
}

func (s *WizardService) apply(ctx context.Context, userID, sessionID string, reduce func(wizard.State) (wizard.State, error)) (WizardResult, error) {
	return s.mutate(ctx, userID, sessionID, func(st wizard.State) (wizard.State, []models.Notification, error) {
		next, err := reduce(st)
		return next, nil, err
	})
}

func (s *WizardService) mutate(
	ctx context.Context,
	userID, sessionID string,
	reduce func(wizard.State) (wizard.State, []models.Notification, error),
) (WizardResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	state, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return WizardResult{}, err
	}

	next, notes, err := reduce(state)
	if err != nil {
		if _, ok := wizard.AsBlocked(err); ok {
			return s.blocked(ctx, state, err)
		}
		return WizardResult{State: state}, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		return WizardResult{}, fmt.Errorf("failed to save wizard session: %w", err)
	}
	s.notify(ctx, next.OwnerID, notes)
	return WizardResult{State: next, Notifications: notes}, nil
}

// blocked reports a refused operation. The state is returned unchanged.
func (s *WizardService) blocked(ctx context.Context, state wizard.State, err error) (WizardResult, error) {
	blocked, ok := wizard.AsBlocked(err)
	if !ok {
		return WizardResult{State: state}, err
	}
	notes := []models.Notification{blocked.Notification()}
	s.notify(ctx, state.OwnerID, notes)
	return WizardResult{State: state, Notifications: notes}, err
}

func (s *WizardService) notify(ctx context.Context, userID string, notes []models.Notification) {
	for _, n := range notes {
		if err := s.sink.Notify(ctx, userID, n); err != nil {
			slog.Warn("failed to deliver notification", "user_id", userID, "title", n.Title, "error", err)
		}
	}
}
