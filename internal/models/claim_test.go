package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCardClaim_Supersedes_Timestamp проверяет, что больший timestamp выигрывает
// независимо от источника
func TestCardClaim_Supersedes_Timestamp(t *testing.T) {
	local := CardClaim{CardNumber: 7, OwnerID: "u1", Timestamp: 150, Origin: OriginLocalOptimistic}
	remote := CardClaim{CardNumber: 7, OwnerID: "u2", Timestamp: 100, Origin: OriginPushDelta}

	assert.True(t, local.Supersedes(remote))
	assert.False(t, remote.Supersedes(local))
}

// TestCardClaim_Supersedes_TieBreak проверяет детерминированный порядок
// источников при равных timestamp
func TestCardClaim_Supersedes_TieBreak(t *testing.T) {
	tests := []struct {
		name     string
		a, b     ClaimOrigin
		expected bool
	}{
		{name: "push delta over poll snapshot", a: OriginPushDelta, b: OriginPollSnapshot, expected: true},
		{name: "push snapshot over local", a: OriginPushSnapshot, b: OriginLocalOptimistic, expected: true},
		{name: "local does not beat push", a: OriginLocalOptimistic, b: OriginPushDelta, expected: false},
		{name: "same origin keeps existing", a: OriginPushDelta, b: OriginPushDelta, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := CardClaim{CardNumber: 1, OwnerID: "a", Timestamp: 100, Origin: tt.a}
			b := CardClaim{CardNumber: 1, OwnerID: "b", Timestamp: 100, Origin: tt.b}
			assert.Equal(t, tt.expected, a.Supersedes(b))
		})
	}
}

// TestPhaseFromStatus проверяет разбор серверных статусов
func TestPhaseFromStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected GamePhase
		ok       bool
	}{
		{status: "waiting", expected: PhaseWaitingForPlayers, ok: true},
		{status: "card_selection", expected: PhaseCardSelection, ok: true},
		{status: "active", expected: PhaseActive, ok: true},
		{status: "finished", expected: PhaseFinished, ok: true},
		{status: "no_winner", expected: PhaseNoWinner, ok: true},
		{status: "restarting", expected: PhaseRestarting, ok: true},
		{status: "bogus", expected: PhaseLoading, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			phase, ok := PhaseFromStatus(tt.status)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, phase)
		})
	}
}

// TestGamePhase_CanSelectCards проверяет в каких фазах разрешен выбор карточек
func TestGamePhase_CanSelectCards(t *testing.T) {
	allowed := []GamePhase{PhaseWaitingForPlayers, PhaseCardSelection, PhaseFinished, PhaseNoWinner}
	for _, p := range allowed {
		assert.True(t, p.CanSelectCards(), p.String())
	}

	denied := []GamePhase{PhaseLoading, PhaseActive, PhaseRestarting}
	for _, p := range denied {
		assert.False(t, p.CanSelectCards(), p.String())
	}
}
