package models

import "github.com/mkravets/bingosync/pkg/api"

// GamePhase — единственный источник правды о том, какой экран и режим
// взаимодействия должен показывать клиент.
type GamePhase int

const (
	PhaseLoading GamePhase = iota
	PhaseWaitingForPlayers
	PhaseCardSelection
	PhaseActive
	PhaseFinished
	PhaseNoWinner
	PhaseRestarting
)

// String returns the string representation of a GamePhase.
func (p GamePhase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseWaitingForPlayers:
		return "waiting_for_players"
	case PhaseCardSelection:
		return "card_selection"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	case PhaseNoWinner:
		return "no_winner"
	case PhaseRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// PhaseFromStatus переводит строковый статус игры с сервера в фазу клиента.
// Второй результат false, если статус неизвестен.
func PhaseFromStatus(status string) (GamePhase, bool) {
	switch status {
	case api.GameStatusWaiting:
		return PhaseWaitingForPlayers, true
	case api.GameStatusCardSelection:
		return PhaseCardSelection, true
	case api.GameStatusActive:
		return PhaseActive, true
	case api.GameStatusFinished:
		return PhaseFinished, true
	case api.GameStatusNoWinner:
		return PhaseNoWinner, true
	case api.GameStatusRestarting:
		return PhaseRestarting, true
	default:
		return PhaseLoading, false
	}
}

// CanSelectCards сообщает, разрешен ли выбор карточек в данной фазе.
// Выбор разрешен до старта игры и после завершения раунда,
// пока идет ожидание рестарта.
func (p GamePhase) CanSelectCards() bool {
	switch p {
	case PhaseWaitingForPlayers, PhaseCardSelection, PhaseFinished, PhaseNoWinner:
		return true
	default:
		return false
	}
}

// Earlier сообщает, является ли фаза более ранней относительно Active.
// Используется для запрета отката фазы после старта игры.
func (p GamePhase) Earlier() bool {
	switch p {
	case PhaseLoading, PhaseWaitingForPlayers, PhaseCardSelection:
		return true
	default:
		return false
	}
}
