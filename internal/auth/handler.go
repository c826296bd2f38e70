package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
)

const maxJSONBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=200"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.service.Register(r.Context(), body.Email, body.Password); err != nil {
		if errors.Is(err, ErrDuplicateCredential) {
			writeError(w, http.StatusBadRequest, "user already exists")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	tokens, err := h.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	access, err := h.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingToken):
			writeError(w, http.StatusBadRequest, "refresh token is required")
		case errors.Is(err, ErrInvalidRefreshToken):
			writeError(w, http.StatusForbidden, "invalid refresh token")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), body.RefreshToken); err != nil {
		switch {
		case errors.Is(err, ErrMissingToken):
			writeError(w, http.StatusBadRequest, "refresh token is required")
		case errors.Is(err, ErrInvalidRefreshToken):
			writeError(w, http.StatusForbidden, "invalid refresh token")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body credentialsRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return credentialsRequest{}, false
	}

	body.Email = strings.TrimSpace(body.Email)
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return credentialsRequest{}, false
	}

	return body, true
}

func decodeRefresh(w http.ResponseWriter, r *http.Request) (refreshRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body refreshRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return refreshRequest{}, false
	}

	body.RefreshToken = strings.TrimSpace(body.RefreshToken)
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
