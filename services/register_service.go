package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"campusmatch/models"
	"campusmatch/store"
	apierrors "campusmatch/utils/errors"
)

// RegisterService runs the multi-step signup flow. Each session holds the
// partial form data; completing the flow funnels the merged data through
// the normal user registration path.
type RegisterService struct {
	sessions TempRegisterStore
	users    *UserService
}

func NewRegisterService(sessions TempRegisterStore, users *UserService) *RegisterService {
	return &RegisterService{sessions: sessions, users: users}
}

// Start opens a fresh registration session.
func (s *RegisterService) Start(ctx context.Context) (*models.TempRegistration, error) {
	session := &models.TempRegistration{
		RegistrationID: uuid.New().String(),
		CurrentStep:    1,
		Data:           map[string]any{},
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to start registration", http.StatusInternalServerError)
	}
	return session, nil
}

// Status reports which step the session is on.
func (s *RegisterService) Status(ctx context.Context, registrationID string) (int, error) {
	session, err := s.find(ctx, registrationID)
	if err != nil {
		return 0, err
	}
	return session.CurrentStep, nil
}

// sensitive form keys never echoed back to the client
var hiddenRegistrationKeys = []string{"password", "password_confirm", "student_id_photo"}

// Data returns the accumulated form data with sensitive keys stripped, so
// a client can restore a half-finished form.
func (s *RegisterService) Data(ctx context.Context, registrationID string) (map[string]any, error) {
	session, err := s.find(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(session.Data))
	for k, v := range session.Data {
		out[k] = v
	}
	for _, k := range hiddenRegistrationKeys {
		delete(out, k)
	}
	return out, nil
}

// SaveStep merges one step's fields into the session. Steps cannot be
// skipped: saving step N requires the session to have reached step N
// already. Re-saving an earlier step just updates its fields.
func (s *RegisterService) SaveStep(ctx context.Context, registrationID string, step int, fields map[string]any) (*models.TempRegistration, error) {
	if step < 1 || step > models.MaxRegistrationStep {
		return nil, apierrors.NewAPIError("INVALID_STEP", "Registration step out of range", http.StatusBadRequest)
	}
	session, err := s.find(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if step > session.CurrentStep {
		return nil, apierrors.NewAPIError("STEP_SKIPPED", "Please complete the previous steps first", http.StatusForbidden)
	}

	for k, v := range fields {
		session.Data[k] = v
	}
	if step == session.CurrentStep {
		session.CurrentStep++
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to save registration step", http.StatusInternalServerError)
	}
	return session, nil
}

// Complete validates the merged data, creates the pending user and removes
// the session.
func (s *RegisterService) Complete(ctx context.Context, registrationID string) (*models.User, string, error) {
	session, err := s.find(ctx, registrationID)
	if err != nil {
		return nil, "", err
	}
	if session.CurrentStep <= models.MaxRegistrationStep {
		return nil, "", apierrors.NewAPIError("INCOMPLETE", "Please complete all registration steps first", http.StatusBadRequest)
	}

	// round-trip through JSON to apply the payload's field tags
	raw, err := json.Marshal(session.Data)
	if err != nil {
		return nil, "", apierrors.Wrap(err, "INVALID_INPUT", "Invalid registration data", http.StatusBadRequest)
	}
	var input RegisterInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, "", apierrors.Wrap(err, "INVALID_INPUT", "Invalid registration data", http.StatusBadRequest)
	}

	user, token, err := s.users.Register(ctx, input)
	if err != nil {
		return nil, "", err
	}
	if err := s.sessions.Delete(ctx, registrationID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return user, token, nil
	}
	return user, token, nil
}

func (s *RegisterService) find(ctx context.Context, registrationID string) (*models.TempRegistration, error) {
	session, err := s.sessions.Find(ctx, registrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NewAPIError("SESSION_NOT_FOUND", "Registration session not found or expired", http.StatusNotFound)
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load registration session", http.StatusInternalServerError)
	}
	return session, nil
}
