package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/enroll/enroll/internal/handler/dto"
	"github.com/enroll/enroll/internal/metrics"
	"github.com/enroll/enroll/internal/model"
	"github.com/enroll/enroll/internal/service"
	"github.com/enroll/enroll/internal/validation"
)

// Response messages.
const (
	MsgUserRegistered     = "User registered successfully"
	MsgValidationFailed   = "Validation failed"
	MsgInvalidBody        = "Invalid request body"
	MsgBodyTooLarge       = "Request body too large"
	MsgEmailRegistered    = "Email already registered"
	MsgRegistrationFailed = "Unable to register user. Please try again later."
)

// Error codes.
const (
	CodeInvalidJSON        = "INVALID_JSON"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeEmailRegistered    = "EMAIL_ALREADY_REGISTERED"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
)

// Registrar registers users.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*model.UserSummary, error)
}

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc       Registrar
	validator *validation.Validator
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc Registrar, v *validation.Validator, recorder metrics.Recorder, logger *slog.Logger) *UserHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserHandler{
		svc:       svc,
		validator: v,
		metrics:   recorder,
		logger:    logger,
	}
}

// Register handles POST /{prefix}/user/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	members, repeated, err := readObject(r.Body)
	if err != nil {
		h.metrics.IncRegistration(metrics.OutcomeInvalid)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, MsgBodyTooLarge)
			return
		}
		h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, MsgInvalidBody)
		return
	}

	var req dto.RegisterUserRequest
	if err := bindMembers(members, map[string]any{
		"email":    &req.Email,
		"password": &req.Password,
	}); err != nil {
		h.metrics.IncRegistration(metrics.OutcomeInvalid)
		h.writeError(w, http.StatusBadRequest, CodeInvalidJSON, MsgInvalidBody)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	fields := h.validator.Struct(&req)
	for key := range members {
		if key != "email" && key != "password" {
			fields = fields.With(key, "property "+key+" should not exist")
		}
	}
	for _, key := range repeated {
		fields = fields.With(key, "property "+key+" should not be repeated")
	}

	if len(fields) > 0 {
		h.metrics.IncRegistration(metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  MsgValidationFailed,
			Code:   CodeValidationFailed,
			Fields: fields,
		})
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterUserResponse{
		Message: MsgUserRegistered,
		User:    dto.ToUserResponse(user),
	})
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		h.writeError(w, http.StatusConflict, CodeEmailRegistered, MsgEmailRegistered)
	case errors.Is(err, service.ErrRegistrationFailed):
		h.writeError(w, http.StatusInternalServerError, CodeRegistrationFailed, MsgRegistrationFailed)
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, CodeRegistrationFailed, MsgRegistrationFailed)
	}
}

// writeError writes an error response.
func (h *UserHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// readObject reads exactly one JSON object and returns its members keyed by
// the exact key text. Keys that occur more than once are listed in repeated.
func readObject(body io.Reader) (members map[string]json.RawMessage, repeated []string, err error) {
	dec := json.NewDecoder(body)

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("request body must be a JSON object")
	}

	members = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("object key must be a string")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}

		if _, seen := members[key]; seen && !slices.Contains(repeated, key) {
			repeated = append(repeated, key)
		}
		members[key] = value
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("request body must contain a single JSON object")
	}

	return members, repeated, nil
}

// bindMembers unmarshals the named members into their targets.
// Absent members leave the target untouched.
func bindMembers(members map[string]json.RawMessage, targets map[string]any) error {
	for key, dst := range targets {
		raw, ok := members[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}
