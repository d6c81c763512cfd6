package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/oauth"
	"github.com/mbolis/forms-app/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, SessionFrom(r).Anonymous())

	ctx := context.WithValue(r.Context(), oauth.CredentialContext, "alice")
	ctx = context.WithValue(ctx, oauth.ClaimsContext, map[string]string{"roles": "admin,editor"})
	s := SessionFrom(r.WithContext(ctx))
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, []string{"admin", "editor"}, s.Roles)
	assert.True(t, s.IsAdmin())

	ctx = context.WithValue(r.Context(), oauth.CredentialContext, "bob")
	ctx = context.WithValue(ctx, oauth.ClaimsContext, map[string]string{"roles": ""})
	s = SessionFrom(r.WithContext(ctx))
	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.Roles)
}

func TestResponseBuffer(t *testing.T) {
	buf := NewResponseBuffer()
	buf.Header().Set("X-Test", "1")
	_, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, buf.Status())

	rec := httptest.NewRecorder()
	require.NoError(t, buf.Flush(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "hello", rec.Body.String())

	buf = NewResponseBuffer()
	buf.WriteHeader(http.StatusUnauthorized)
	buf.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusUnauthorized, buf.Status())
}

func TestLogRepoError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.Wrap(repository.ErrNotFound, "db.get_template"), http.StatusNotFound},
		{errors.Wrap(repository.ErrConflict, "db.update_template"), http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		LogRepoError(rec, "test", c.err)
		assert.Equal(t, c.status, rec.Code, c.err.Error())
	}
}

func TestLogValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	LogValidation(rec, r, "test", map[string]string{"q1": "This field is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "This field is required", body["errors"]["q1"])
}
