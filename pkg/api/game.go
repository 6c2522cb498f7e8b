package api

// Статусы игры, приходящие с сервера как строки.
const (
	GameStatusWaiting       = "waiting"
	GameStatusCardSelection = "card_selection"
	GameStatusActive        = "active"
	GameStatusFinished      = "finished"
	GameStatusNoWinner      = "no_winner"
	GameStatusRestarting    = "restarting"
)

// Game представляет игру в ответах REST API.
// EntryFee и PrizePool приходят с сервера и показываются как есть:
// клиент никогда не считает выигрыш сам.
type Game struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	CalledNumbers []int  `json:"called_numbers,omitempty"`
	PlayerCount   int    `json:"player_count"`
	CurrentNumber int    `json:"current_number,omitempty"`
	EntryFee      int64  `json:"entry_fee"`
	PrizePool     int64  `json:"prize_pool"`
	Sequence      int64  `json:"sequence"`
	ServerTime    int64  `json:"server_time"` // unix millis на сервере
}

// GamesResponse представляет список игр (active / waiting)
type GamesResponse struct {
	Games      []Game `json:"games"`
	ServerTime int64  `json:"server_time"`
}

// TakenCard представляет одну занятую карточку
type TakenCard struct {
	UserID     string `json:"user_id"`
	CardNumber int    `json:"card_number"`
}

// TakenCardsResponse представляет полный снимок занятых карточек
type TakenCardsResponse struct {
	GameID     string      `json:"game_id"`
	TakenCards []TakenCard `json:"taken_cards"`
	ServerTime int64       `json:"server_time"`
}

// AvailableCardsResponse представляет снимок со списком свободных карточек
type AvailableCardsResponse struct {
	GameID         string      `json:"game_id"`
	TakenCards     []TakenCard `json:"taken_cards"`
	AvailableCards []int       `json:"available_cards"`
	ServerTime     int64       `json:"server_time"`
}

// SelectCardRequest представляет запрос на выбор карточки.
// RequestID генерируется клиентом и позволяет отбросить устаревший
// ответ, если пользователь успел выбрать другую карточку.
type SelectCardRequest struct {
	RequestID  string `json:"request_id"`
	CardNumber int    `json:"card_number"`
}

// SelectCardResponse представляет ответ сервера на выбор карточки
type SelectCardResponse struct {
	UserID     string `json:"user_id"`
	Message    string `json:"message,omitempty"`
	CardNumber int    `json:"card_number"`
	Success    bool   `json:"success"`
	ServerTime int64  `json:"server_time"`
}

// SelectionStatusResponse представляет состояние выбора карточки пользователем
type SelectionStatusResponse struct {
	GameID     string `json:"game_id"`
	CardNumber int    `json:"card_number"` // 0 если карточка не выбрана
	Confirmed  bool   `json:"confirmed"`
	ServerTime int64  `json:"server_time"`
}

// SyncStateResponse представляет полное состояние игры для ресинхронизации.
// Запрашивается когда клиент обнаружил пропуск в sequence или устарел.
type SyncStateResponse struct {
	GameID        string      `json:"game_id"`
	Status        string      `json:"status"`
	CalledNumbers []int       `json:"called_numbers"`
	TakenCards    []TakenCard `json:"taken_cards"`
	CurrentNumber int         `json:"current_number"`
	Sequence      int64       `json:"sequence"`
	ServerTime    int64       `json:"server_time"`
}

// BalanceResponse представляет баланс кошелька пользователя
type BalanceResponse struct {
	Currency   string `json:"currency"`
	Balance    int64  `json:"balance"`
	ServerTime int64  `json:"server_time"`
}
