package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zionnix/jmd-remake/internal/booking"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

const adminToken = "test-admin-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := booking.NewMemoryRepository()
	svc := booking.NewService(repo, nil, nil, fixedClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}, nil)

	router := NewRouter(RouterConfig{
		Service:   svc,
		Authorize: TokenAuthorizer(adminToken),
		Env:       "test",
		Version:   "test",
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func submitBody(slotDate, slotTime string) map[string]string {
	return map[string]string{
		"name":      "Jane Doe",
		"email":     "jane@example.com",
		"phone":     "0600000000",
		"message":   "Website project",
		"slot_date": slotDate,
		"slot_time": slotTime,
	}
}

func TestSubmitAndAvailabilityFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", submitBody("2025-06-10", "17:00"), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "2025-06-10", created.SlotDate)
	assert.Equal(t, "17:00", created.SlotTime)

	// Same slot again conflicts.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/appointments", submitBody("2025-06-10", "17:00"), "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "slot_taken", errResp.Error)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/slots?date=2025-06-10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var slots SlotsResponse
	require.NoError(t, json.Unmarshal(body, &slots))
	require.Len(t, slots.Slots, len(booking.DefaultWeekdaySlots))
	free := map[string]bool{}
	for _, s := range slots.Slots {
		free[s.Time] = s.Free
	}
	assert.False(t, free["17:00"])
	assert.True(t, free["17:30"])
}

func TestSubmitValidationResponses(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name     string
		body     map[string]string
		wantCode string
	}{
		{"missing name", map[string]string{"email": "j@e.com", "slot_date": "2025-06-10", "slot_time": "17:00"}, "validation_error"},
		{"past date", submitBody("2025-05-31", "17:00"), "past_date"},
		{"illegal slot", submitBody("2025-06-10", "10:00"), "invalid_slot"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", tc.body, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tc.wantCode, errResp.Error)
		})
	}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/appointments", submitBody("10/06/2025", "17:00"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSlotsRequiresDate(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/slots", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/slots?date=june-10", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpointsRequireAuthorization(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/admin/appointments", "/admin/stats"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)

		resp, _ = doJSON(t, http.MethodGet, ts.URL+path, nil, "wrong-token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestModerationFlow(t *testing.T) {
	ts := newTestServer(t)

	var ids []string
	for _, slot := range []string{"17:00", "17:30", "18:00"} {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/appointments", submitBody("2025-06-10", slot), "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &created))
		ids = append(ids, created.ID.String())
	}

	// Validate the first, reject the second, delete the third.
	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/admin/appointments/%s/validate", ts.URL, ids[0]), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "validated", updated.Status)
	assert.NotNil(t, updated.StatusChangedAt)

	// Idempotent re-validate.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/admin/appointments/%s/validate", ts.URL, ids[0]), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Cross-terminal move conflicts.
	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/admin/appointments/%s/reject", ts.URL, ids[0]), nil, adminToken)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "invalid_status_transition", errResp.Error)

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/admin/appointments/%s/reject", ts.URL, ids[1]), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/admin/appointments/%s", ts.URL, ids[2]), nil, adminToken)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Stats reflect the moderation.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, StatsResponse{Total: 2, Pending: 0, Validated: 1, Rejected: 1}, stats)

	// Filtered listing.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/admin/appointments?status=rejected", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID.String())

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/admin/appointments?status=archived", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModerationUnknownID(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/admin/appointments/0b9bd3c0-0000-4000-8000-000000000000/validate", nil, adminToken)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "appointment_not_found", errResp.Error)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/admin/appointments/not-a-uuid/validate", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthLiveness(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health/live", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var live LivenessResponse
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Equal(t, "ok", live.Status)
}

func TestTokenAuthorizer(t *testing.T) {
	auth := TokenAuthorizer("secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	assert.False(t, auth(req))

	req.Header.Set("Authorization", "Bearer secret")
	assert.True(t, auth(req))

	req.Header.Set("Authorization", "Bearer nope")
	assert.False(t, auth(req))

	empty := TokenAuthorizer("")
	req.Header.Set("Authorization", "Bearer ")
	assert.False(t, empty(req))
}
