//go:build integration

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gruzdev-dev/codex-users/core/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type userEnvelope struct {
	Success bool        `json:"success"`
	Data    domain.User `json:"data"`
	Message string      `json:"message"`
	Error   string      `json:"error"`
}

type statsEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		TotalActiveUsers int64 `json:"total_active_users"`
	} `json:"data"`
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func getUserFromDB(ctx context.Context, pool *pgxpool.Pool, id string) (*domain.User, error) {
	var user domain.User
	err := pool.QueryRow(ctx,
		`SELECT id, username, email, name, is_active, email_verified, created_at, updated_at
		 FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.Name,
			&user.IsActive, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func TestUserIntegration(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup()

	// the cache is a pass-through here; its behavior is unit tested
	env.CacheMock.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheMiss).AnyTimes()
	env.CacheMock.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	env.CacheMock.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var userID string

	t.Run("Step 1: Create user", func(t *testing.T) {
		resp := postJSON(t, env.ServerURL+"/api/users", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"name":     "Alice",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decode[userEnvelope](t, resp)
		require.True(t, body.Success)
		require.NotEmpty(t, body.Data.ID)
		assert.True(t, body.Data.IsActive)
		assert.False(t, body.Data.EmailVerified)
		userID = body.Data.ID
	})

	t.Run("Step 2: Verify user record in database", func(t *testing.T) {
		require.NotEmpty(t, userID)

		user, err := getUserFromDB(context.Background(), env.DB, userID)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.IsActive)
	})

	t.Run("Step 3: Get user by id", func(t *testing.T) {
		resp, err := http.Get(env.ServerURL + "/api/users/" + userID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[userEnvelope](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, userID, body.Data.ID)
	})

	t.Run("Step 4: Duplicate email is rejected", func(t *testing.T) {
		resp := postJSON(t, env.ServerURL+"/api/users", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"name":     "Other Alice",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		body := decode[userEnvelope](t, resp)
		assert.False(t, body.Success)
		assert.Contains(t, body.Error, "email")
	})

	t.Run("Step 5: Partial update merges fields", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, env.ServerURL+"/api/users/"+userID, map[string]any{
			"name": "Alice Renamed",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[userEnvelope](t, resp)
		assert.Equal(t, "Alice Renamed", body.Data.Name)
		assert.Equal(t, "alice", body.Data.Username)
		assert.Equal(t, "alice@example.com", body.Data.Email)

		user, err := getUserFromDB(context.Background(), env.DB, userID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Renamed", user.Name)
		assert.True(t, user.UpdatedAt.After(user.CreatedAt))
	})

	t.Run("Step 6: Soft delete keeps the row", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, env.ServerURL+"/api/users/"+userID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		getResp, err := http.Get(env.ServerURL + "/api/users/" + userID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
		getResp.Body.Close()

		user, err := getUserFromDB(context.Background(), env.DB, userID)
		require.NoError(t, err)
		assert.False(t, user.IsActive)

		delResp := doJSON(t, http.MethodDelete, env.ServerURL+"/api/users/"+userID, nil)
		assert.Equal(t, http.StatusNotFound, delResp.StatusCode)
		delResp.Body.Close()
	})

	t.Run("Step 7: Stats reflect soft deletes", func(t *testing.T) {
		for _, u := range []string{"bob", "carol"} {
			resp := postJSON(t, env.ServerURL+"/api/users", map[string]string{
				"username": u,
				"email":    u + "@example.com",
				"name":     u,
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}

		resp, err := http.Get(env.ServerURL + "/api/users/stats")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[statsEnvelope](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, int64(2), body.Data.TotalActiveUsers)
	})

	t.Run("Step 8: Unique constraint backstops racing creates", func(t *testing.T) {
		_, err := env.DB.Exec(context.Background(),
			`INSERT INTO users (id, username, email, name, created_at, updated_at)
			 VALUES ('raced-id', 'bob', 'someone-else@example.com', 'Racer', now(), now())`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate key")
	})
}

func TestHealthIntegration(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup()

	resp, err := http.Get(env.ServerURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	// transport-level status is 200 even when a check fails
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	// postgres is reachable, redis deliberately is not
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Equal(t, "unhealthy", body.Checks["redis"].Status)
}

func TestRootMetadata(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup()

	resp, err := http.Get(env.ServerURL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "/api/users", body.Endpoints["users"])
}
