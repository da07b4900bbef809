package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuota(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/quota", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 5, body["remaining_requests"])
	assert.EqualValues(t, 5, body["max_requests"])
	assert.EqualValues(t, 60, body["reset_in_minutes"])

	f.expectSuccess(2)
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/recipes", `{"ingredients":"rice, garlic"}`).Code)
	}

	f.now = f.now.Add(30*time.Minute + time.Second)
	w = f.do(t, http.MethodGet, "/api/v1/quota", "")
	body = decodeBody(t, w)
	assert.EqualValues(t, 3, body["remaining_requests"])
	assert.EqualValues(t, 30, body["reset_in_minutes"])

	// reading the quota never charges it
	w = f.do(t, http.MethodGet, "/api/v1/quota", "")
	assert.EqualValues(t, 3, decodeBody(t, w)["remaining_requests"])
}

func TestGetQuotaRollsWindowOver(t *testing.T) {
	f := newAPIFixture(t)
	f.expectSuccess(1)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/recipes", `{"ingredients":"rice, garlic"}`).Code)

	f.now = f.now.Add(2 * time.Hour)
	w := f.do(t, http.MethodGet, "/api/v1/quota", "")
	body := decodeBody(t, w)
	assert.EqualValues(t, 5, body["remaining_requests"])
	assert.EqualValues(t, 60, body["reset_in_minutes"])
}
