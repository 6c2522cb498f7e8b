package api

import "encoding/json"

// Типы сообщений push-канала (сервер -> клиент).
const (
	MsgConnected              = "CONNECTED"
	MsgTakenCardsUpdate       = "TAKEN_CARDS_UPDATE"
	MsgCardAvailabilityUpdate = "CARD_AVAILABILITY_UPDATE"
	MsgCardSelected           = "CARD_SELECTED"
	MsgCardSelectedWithNumber = "CARD_SELECTED_WITH_NUMBER"
	MsgCardReleased           = "CARD_RELEASED"
	MsgGameStatusUpdate       = "GAME_STATUS_UPDATE"
	MsgNumberCalled           = "NUMBER_CALLED"
	MsgGameStarted            = "GAME_STARTED"
	MsgCardSelectionStarted   = "CARD_SELECTION_STARTED"
	MsgBingoClaimed           = "BINGO_CLAIMED"
	MsgWinnerDeclared         = "WINNER_DECLARED"
	MsgNoWinner               = "NO_WINNER"
	MsgPong                   = "PONG"
	MsgSyncRequest            = "SYNC_REQUEST"
)

// Типы сообщений push-канала (клиент -> сервер).
const (
	MsgGetCardAvailability = "GET_CARD_AVAILABILITY"
	MsgPing                = "PING"
)

// Envelope — конверт любого сообщения push-канала
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TakenCardsUpdate — полный снимок занятых карточек (push)
type TakenCardsUpdate struct {
	TakenCards []TakenCard `json:"taken_cards"`
	ServerTime int64       `json:"server_time"`
}

// CardAvailabilityUpdate — вариант снимка с явным списком свободных карточек
type CardAvailabilityUpdate struct {
	TakenCards     []TakenCard `json:"taken_cards"`
	AvailableCards []int       `json:"available_cards"`
	ServerTime     int64       `json:"server_time"`
}

// CardDelta — одиночное изменение занятости карточки
// (CARD_SELECTED, CARD_SELECTED_WITH_NUMBER, CARD_RELEASED)
type CardDelta struct {
	UserID     string `json:"user_id"`
	CardNumber int    `json:"card_number"`
	ServerTime int64  `json:"server_time"`
}

// GameStatusUpdate — снимок фазы игры и вызванных номеров
type GameStatusUpdate struct {
	Status        string `json:"status"`
	CalledNumbers []int  `json:"called_numbers"`
	CurrentNumber int    `json:"current_number"`
	Sequence      int64  `json:"sequence"`
	ServerTime    int64  `json:"server_time"`
}

// NumberCalled — очередной вызванный номер; единственный тип событий,
// который несет сквозной sequence для контроля пропусков
type NumberCalled struct {
	Number     int   `json:"number"`
	Sequence   int64 `json:"sequence"`
	ServerTime int64 `json:"server_time"`
}

// WinnerDeclared — объявление победителя
type WinnerDeclared struct {
	UserID     string `json:"user_id"`
	CardNumber int    `json:"card_number"`
	Prize      int64  `json:"prize"` // сумма с сервера, клиент не пересчитывает
}

// SyncRequest — серверный запрос ресинхронизации
type SyncRequest struct {
	ForceSync bool `json:"force_sync"`
}

// PingMessage — heartbeat с текущим sequence для пассивной проверки
// синхронизации на стороне сервера
type PingMessage struct {
	ClientTime int64 `json:"client_time"`
	Sequence   int64 `json:"sequence"`
}

// GetCardAvailability — запрос актуального снимка занятости карточек
type GetCardAvailability struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
}
