package api

// TelegramAuthRequest представляет запрос на вход через Telegram Mini App
type TelegramAuthRequest struct {
	InitData string `json:"init_data"` // сырая строка window.Telegram.WebApp.initData
}

// AuthUser представляет пользователя в ответе аутентификации
type AuthUser struct {
	ID        string `json:"id"`         // идентификатор пользователя на бекенде
	Username  string `json:"username"`   // telegram username (может быть пустым)
	FirstName string `json:"first_name"` // имя из профиля Telegram
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	User      AuthUser `json:"user"`       // данные пользователя
	Token     string   `json:"token"`      // JWT access token
	ExpiresIn int64    `json:"expires_in"` // время жизни токена в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
