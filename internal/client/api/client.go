package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mkravets/bingosync/pkg/api"
)

// Client представляет HTTP клиент бокового канала (REST) бекенда.
// Push-канал живет отдельно в transport.Channel; здесь только
// запрос-ответ: опрос состояния, команды выбора карточек, кошелек.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken устанавливает bearer токен для последующих запросов
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// TelegramLogin выполняет вход по initData из Telegram Mini App
func (c *Client) TelegramLogin(ctx context.Context, req api.TelegramAuthRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, "POST", "/api/v1/auth/telegram", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("telegram login request failed: %w", err)
	}
	return &resp, nil
}

// ActiveGames возвращает список активных игр
func (c *Client) ActiveGames(ctx context.Context) (*api.GamesResponse, error) {
	var resp api.GamesResponse
	err := c.doRequest(ctx, "GET", "/api/v1/games/active", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("active games request failed: %w", err)
	}
	return &resp, nil
}

// WaitingGames возвращает список игр, ожидающих игроков
func (c *Client) WaitingGames(ctx context.Context) (*api.GamesResponse, error) {
	var resp api.GamesResponse
	err := c.doRequest(ctx, "GET", "/api/v1/games/waiting", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("waiting games request failed: %w", err)
	}
	return &resp, nil
}

// GameByID возвращает игру по идентификатору
func (c *Client) GameByID(ctx context.Context, gameID string) (*api.Game, error) {
	var resp api.Game
	url := fmt.Sprintf("/api/v1/games/%s", gameID)
	err := c.doRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("game by id request failed: %w", err)
	}
	return &resp, nil
}

// TakenCards возвращает полный снимок занятых карточек
func (c *Client) TakenCards(ctx context.Context, gameID string) (*api.TakenCardsResponse, error) {
	var resp api.TakenCardsResponse
	url := fmt.Sprintf("/api/v1/games/%s/cards/taken", gameID)
	err := c.doRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("taken cards request failed: %w", err)
	}
	return &resp, nil
}

// AvailableCards возвращает снимок со списком свободных карточек
func (c *Client) AvailableCards(ctx context.Context, gameID string) (*api.AvailableCardsResponse, error) {
	var resp api.AvailableCardsResponse
	url := fmt.Sprintf("/api/v1/games/%s/cards/available", gameID)
	err := c.doRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("available cards request failed: %w", err)
	}
	return &resp, nil
}

// SelectCard отправляет запрос на выбор карточки
func (c *Client) SelectCard(ctx context.Context, gameID string, req api.SelectCardRequest) (*api.SelectCardResponse, error) {
	var resp api.SelectCardResponse
	url := fmt.Sprintf("/api/v1/games/%s/cards/select", gameID)
	err := c.doRequest(ctx, "POST", url, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("select card request failed: %w", err)
	}
	return &resp, nil
}

// SelectionStatus возвращает состояние выбора карточки текущим пользователем
func (c *Client) SelectionStatus(ctx context.Context, gameID string) (*api.SelectionStatusResponse, error) {
	var resp api.SelectionStatusResponse
	url := fmt.Sprintf("/api/v1/games/%s/cards/status", gameID)
	err := c.doRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("selection status request failed: %w", err)
	}
	return &resp, nil
}

// SyncState возвращает полное состояние игры начиная с sinceSequence.
// Используется для ресинхронизации после пропуска push-событий.
func (c *Client) SyncState(ctx context.Context, gameID string, sinceSequence int64) (*api.SyncStateResponse, error) {
	var resp api.SyncStateResponse
	url := fmt.Sprintf("/api/v1/games/%s/sync?since_sequence=%d", gameID, sinceSequence)
	err := c.doRequest(ctx, "GET", url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("sync state request failed: %w", err)
	}
	return &resp, nil
}

// Balance возвращает баланс кошелька пользователя
func (c *Client) Balance(ctx context.Context) (*api.BalanceResponse, error) {
	var resp api.BalanceResponse
	err := c.doRequest(ctx, "GET", "/api/v1/wallet/balance", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("balance request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
