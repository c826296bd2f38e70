package post

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"postboard/internal/auth"
)

func TestCreateWithoutIdentity(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"t"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"content":"body"}`))
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: "user-1"}))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{`))
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: "user-1"}))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRejectsInvalidID(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
