package models

import "time"

// NotificationLevel — уровень уведомления для слоя представления
type NotificationLevel string

const (
	NotifyInfo  NotificationLevel = "info"
	NotifyError NotificationLevel = "error"
)

// Notification — транзиентное пользовательское уведомление.
// Слой представления сам убирает его после ExpiresAt; ядро не хранит
// историю уведомлений.
type Notification struct {
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Level      NotificationLevel `json:"level"`
	Message    string            `json:"message"`
	CardNumber int               `json:"card_number,omitempty"` // 0 если не про карточку
}
