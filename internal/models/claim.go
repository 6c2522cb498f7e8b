package models

// ClaimOrigin — источник наблюдения о занятости карточки.
// Разные каналы (push, polling, локальная оптимистичная отметка)
// сообщают о занятости независимо и могут противоречить друг другу.
type ClaimOrigin string

const (
	OriginPushSnapshot    ClaimOrigin = "push_snapshot"
	OriginPushDelta       ClaimOrigin = "push_delta"
	OriginPollSnapshot    ClaimOrigin = "poll_snapshot"
	OriginLocalOptimistic ClaimOrigin = "local_optimistic"
)

// rank задает детерминированный порядок источников при равных timestamp.
// Серверные наблюдения выше локальных: сервер в итоге всегда прав.
func (o ClaimOrigin) rank() int {
	switch o {
	case OriginPushDelta:
		return 4
	case OriginPushSnapshot:
		return 3
	case OriginPollSnapshot:
		return 2
	case OriginLocalOptimistic:
		return 1
	default:
		return 0
	}
}

// CardClaim представляет состояние владения одной карточкой,
// как его видит клиент через один из каналов.
type CardClaim struct {
	OwnerID    string      `json:"owner_id"`
	Origin     ClaimOrigin `json:"origin"`
	CardNumber int         `json:"card_number"`
	Timestamp  int64       `json:"timestamp"` // unix millis момента наблюдения
}

// Supersedes определяет, перекрывает ли текущее наблюдение другое.
// Согласно алгоритму LWW (Last-Write-Wins):
// 1. Сначала сравнивается Timestamp (больший выигрывает)
// 2. При равных Timestamp сравнивается ранг источника
// Правило строго больше: при полном равенстве существующее наблюдение
// остается на месте, что делает слияние идемпотентным.
func (c CardClaim) Supersedes(other CardClaim) bool {
	if c.Timestamp != other.Timestamp {
		return c.Timestamp > other.Timestamp
	}
	return c.Origin.rank() > other.Origin.rank()
}
