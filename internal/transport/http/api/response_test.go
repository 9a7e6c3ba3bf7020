package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusForbidden, "field_forbidden", "edit not permitted", []string{"salary"}, "req-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string   `json:"code"`
			Details []string `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "field_forbidden", env.Error.Code)
	assert.Equal(t, []string{"salary"}, env.Error.Details)
	assert.Equal(t, "req-1", env.RequestID)
}

func TestSuccessOmitsError(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"n": 1}, "")
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())
}
