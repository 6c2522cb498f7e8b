package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/bingosync/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_TelegramLogin проверяет успешный вход через Telegram
func TestClient_TelegramLogin(t *testing.T) {
	// Создаем mock сервер
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/auth/telegram", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.TelegramAuthRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "query_id=abc&user=...", req.InitData)

		resp := api.TokenResponse{
			Token:     "jwt-token",
			ExpiresIn: 3600,
			User:      api.AuthUser{ID: "user-123", Username: "bingoplayer"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.TelegramLogin(context.Background(), api.TelegramAuthRequest{
		InitData: "query_id=abc&user=...",
	})

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, "user-123", resp.User.ID)
}

// TestClient_AuthorizationHeader проверяет передачу bearer токена
func TestClient_AuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer my-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(api.BalanceResponse{Balance: 1250, Currency: "XTR"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("my-token")

	resp, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1250), resp.Balance)
}

// TestClient_SelectCard проверяет команду выбора карточки
func TestClient_SelectCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/games/game-1/cards/select", r.URL.Path)

		var req api.SelectCardRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 42, req.CardNumber)
		assert.NotEmpty(t, req.RequestID)

		_ = json.NewEncoder(w).Encode(api.SelectCardResponse{
			Success:    true,
			CardNumber: 42,
			UserID:     "user-123",
			ServerTime: 1700000000000,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.SelectCard(context.Background(), "game-1", api.SelectCardRequest{
		CardNumber: 42,
		RequestID:  "req-1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 42, resp.CardNumber)
}

// TestClient_SyncState проверяет запрос состояния для ресинхронизации
func TestClient_SyncState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/games/game-1/sync", r.URL.Path)
		assert.Equal(t, "57", r.URL.Query().Get("since_sequence"))

		_ = json.NewEncoder(w).Encode(api.SyncStateResponse{
			GameID:        "game-1",
			Status:        "active",
			Sequence:      60,
			CalledNumbers: []int{5, 12, 60},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.SyncState(context.Background(), "game-1", 57)
	require.NoError(t, err)
	assert.Equal(t, int64(60), resp.Sequence)
	assert.Len(t, resp.CalledNumbers, 3)
}

// TestClient_ServerError проверяет обработку ошибок сервера
func TestClient_ServerError(t *testing.T) {
	tests := []struct {
		responseBody   interface{}
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:       "card already taken",
			statusCode: http.StatusConflict,
			responseBody: api.ErrorResponse{
				Error:   "conflict",
				Message: "card already taken",
			},
			expectedErrMsg: "server error (409): card already taken",
		},
		{
			name:           "non-json error body",
			statusCode:     http.StatusInternalServerError,
			responseBody:   "boom",
			expectedErrMsg: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer server.Close()

			client := NewClient(server.URL)

			_, err := client.GameByID(context.Background(), "game-1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
		})
	}
}

// TestClient_ContextCancelled проверяет, что ошибка не теряет причину
func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ActiveGames(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
