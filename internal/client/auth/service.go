package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkravets/bingosync/internal/client/storage"
	pkgapi "github.com/mkravets/bingosync/pkg/api"
)

// APIClient определяет часть бокового канала, нужную авторизации
type APIClient interface {
	// TelegramLogin выполняет вход по initData из Telegram Mini App
	TelegramLogin(ctx context.Context, req pkgapi.TelegramAuthRequest) (*pkgapi.TokenResponse, error)

	// SetToken устанавливает bearer токен для последующих запросов
	SetToken(token string)
}

// Service предоставляет функции авторизации
type Service struct {
	apiClient    APIClient
	sessionStore storage.SessionStorage
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, sessionStore storage.SessionStorage) *Service {
	return &Service{
		apiClient:    apiClient,
		sessionStore: sessionStore,
	}
}

// Login выполняет вход по строке initData и сохраняет сессию.
// NodeID устройства переживает повторные логины: если сессия уже
// существовала, ее NodeID переносится в новую.
func (s *Service) Login(ctx context.Context, initData string) (*storage.Session, error) {
	if initData == "" {
		return nil, fmt.Errorf("init data is empty")
	}

	resp, err := s.apiClient.TelegramLogin(ctx, pkgapi.TelegramAuthRequest{InitData: initData})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	// NodeID: сохраняем прежний, если он был
	nodeID := uuid.NewString()
	if prev, err := s.sessionStore.GetSession(ctx); err == nil && prev.NodeID != "" {
		nodeID = prev.NodeID
	}

	session := &storage.Session{
		UserID:    resp.User.ID,
		Username:  resp.User.Username,
		Token:     resp.Token,
		NodeID:    nodeID,
		ExpiresAt: tokenExpiry(resp.Token, resp.ExpiresIn),
	}

	if err := s.sessionStore.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.apiClient.SetToken(resp.Token)

	return session, nil
}

// Logout удаляет сохраненную сессию
func (s *Service) Logout(ctx context.Context) error {
	s.apiClient.SetToken("")
	if err := s.sessionStore.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Current возвращает сохраненную сессию и подключает ее токен
// к API клиенту. Возвращает storage.ErrSessionNotFound если сессии нет.
func (s *Service) Current(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessionStore.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	s.apiClient.SetToken(session.Token)
	return session, nil
}

// IsAuthenticated проверяет наличие действующей (не истекшей) сессии
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	session, err := s.sessionStore.GetSession(ctx)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return false, nil
		}
		return false, err
	}

	return session.ExpiresAt > time.Now().Unix(), nil
}

// tokenExpiry определяет момент истечения токена.
// Берем exp из JWT claims без проверки подписи: ключ подписи живет
// на бекенде, клиенту нужен только срок действия. Если claims
// нечитаемы, считаем от expires_in.
func tokenExpiry(token string, expiresIn int64) int64 {
	fallback := time.Now().Unix() + expiresIn

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}

	return exp.Unix()
}
