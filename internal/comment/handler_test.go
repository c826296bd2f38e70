package comment

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

	req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRequiresContentAndPost(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	for name, body := range map[string]string{
		"missing post":    `{"content":"hi"}`,
		"missing content": `{"post":"0198e2f2-0000-7000-8000-000000000000"}`,
		"bad post id":     `{"content":"hi","post":"nope"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(body))
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: "user-1"}))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	t.Parallel()

	handler := NewHandler(nil)

	req := httptest.NewRequest(http.MethodDelete, "/comments/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
