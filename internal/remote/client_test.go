package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves handler and returns a Client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	_, err = NewClient("://nope")
	assert.Error(t, err)
}

func TestClient_FetchUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/anon-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"_id": "m-1", "anonymousID": "anon-1", "name": "Ada"})
	})

	user, err := c.FetchUser(context.Background(), "anon-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", user.ID)
	assert.Equal(t, "Ada", user.Name)
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
	})

	_, err := c.FetchUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "User not found", se.Message)
}

func TestClient_LoginSendsUsername(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada", body["username"])
		writeJSON(w, http.StatusOK, map[string]any{"_id": "m-1", "username": "ada"})
	})

	user, err := c.Login(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
}

func TestClient_RegisterRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username already taken"})
	})

	_, err := c.Register(context.Background(), UserRecord{Username: "ada"})
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Username already taken")
}

func TestClient_SubmitEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sugar-events", r.URL.Path)
		var sub EventSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		assert.Equal(t, "m-1", sub.UserID)
		assert.Equal(t, "Soda", sub.FoodName)
		assert.Equal(t, int64(1700000000000), sub.Timestamp)
		writeJSON(w, http.StatusCreated, map[string]any{
			"streak":         4,
			"pointsEarned":   10,
			"pointsMessages": []string{"First log of the day"},
			"eventId":        "ev-9",
		})
	})

	resp, err := c.SubmitEvent(context.Background(), EventSubmission{
		UserID: "m-1", FoodName: "Soda", SugarGrams: 39, Timestamp: 1700000000000,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Streak)
	assert.Equal(t, 10, resp.PointsEarned)
	assert.Equal(t, "ev-9", resp.EventID)
}

func TestClient_FetchEventsAndDelete(t *testing.T) {
	var deleted string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/sugar-events/m-1", r.URL.Path)
			writeJSON(w, http.StatusOK, []map[string]any{
				{"_id": "ev-1", "itemName": "Soda", "sugarGrams": 39, "timestamp": "2025-06-10T08:00:00Z"},
				{"_id": "ev-2", "itemName": "Fruit", "sugarGrams": 15, "timestamp": 1749542400000},
			})
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	})

	events, err := c.FetchEvents(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Soda", events[0].ItemName)
	assert.Equal(t, Timestamp(1749542400000), events[0].Timestamp)

	require.NoError(t, c.DeleteEvent(context.Background(), "ev-1"))
	assert.Equal(t, "/api/sugar-events/ev-1", deleted)
}

func TestClient_UpdateUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/anon-1", r.URL.Path)
		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "Ada", fields["name"])
		writeJSON(w, http.StatusOK, map[string]any{"_id": "m-1", "name": "Ada"})
	})

	_, err := c.UpdateUser(context.Background(), "anon-1", map[string]any{"name": "Ada"})
	require.NoError(t, err)
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Login(context.Background(), "ada")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsRejected(err))
}
