package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/bingosync/internal/models"
)

func snapshot(claims ...models.CardClaim) []models.CardClaim { return claims }

// TestApplySnapshot_Idempotent проверяет, что повторное применение
// того же снимка не меняет авторитетную картину
func TestApplySnapshot_Idempotent(t *testing.T) {
	s := NewStore(400)

	snap := snapshot(
		models.CardClaim{CardNumber: 7, OwnerID: "u1", Timestamp: 100},
		models.CardClaim{CardNumber: 9, OwnerID: "u2", Timestamp: 120},
	)

	s.ApplySnapshot(models.OriginPushSnapshot, snap)
	first := s.AuthoritativeView()

	s.ApplySnapshot(models.OriginPushSnapshot, snap)
	second := s.AuthoritativeView()

	assert.Equal(t, first, second)
	assert.Equal(t, map[int]string{7: "u1", 9: "u2"}, second)
}

// TestApplyDelta_TimestampWins проверяет, что поздний timestamp
// выигрывает независимо от порядка применения
func TestApplyDelta_TimestampWins(t *testing.T) {
	// Прямой порядок: A(t=100), затем B(t=150)
	s := NewStore(400)
	s.ApplyDelta(models.OriginPushDelta, 7, "u1", 100)
	s.ApplyDelta(models.OriginPushDelta, 7, "u2", 150)
	assert.Equal(t, "u2", s.AuthoritativeView()[7])

	// Обратный порядок: B(t=150), затем A(t=100)
	s = NewStore(400)
	s.ApplyDelta(models.OriginPushDelta, 7, "u2", 150)
	applied := s.ApplyDelta(models.OriginPushDelta, 7, "u1", 100)
	assert.False(t, applied)
	assert.Equal(t, "u2", s.AuthoritativeView()[7])
}

// TestApplyDelta_TieKeepsExisting проверяет first-writer-wins при
// равных timestamp
func TestApplyDelta_TieKeepsExisting(t *testing.T) {
	s := NewStore(400)

	assert.True(t, s.ApplyDelta(models.OriginPushDelta, 7, "u1", 100))
	assert.False(t, s.ApplyDelta(models.OriginPushDelta, 7, "u2", 100))
	assert.Equal(t, "u1", s.AuthoritativeView()[7])
}

// TestConflict_LocalVsPush проверяет правило разрешения конфликта:
// локальная оптимистичная отметка проигрывает более свежему push
// о захвате карточки другим игроком. Это осознанное правило, а не
// баг: сервер — окончательный источник правды.
func TestConflict_LocalVsPush(t *testing.T) {
	s := NewStore(400)

	s.ApplyDelta(models.OriginLocalOptimistic, 42, "me", 100)
	assert.Equal(t, "me", s.AuthoritativeView()[42])

	// Push новее — карточка уходит другому
	s.ApplyDelta(models.OriginPushDelta, 42, "rival", 200)
	assert.Equal(t, "rival", s.AuthoritativeView()[42])

	// Локальная отметка новее push — остается локальная
	s = NewStore(400)
	s.ApplyDelta(models.OriginPushDelta, 42, "rival", 100)
	s.ApplyDelta(models.OriginLocalOptimistic, 42, "me", 200)
	assert.Equal(t, "me", s.AuthoritativeView()[42])
}

// TestSnapshot_DoesNotTouchOtherOrigins проверяет изоляцию источников
func TestSnapshot_DoesNotTouchOtherOrigins(t *testing.T) {
	s := NewStore(400)

	s.ApplyDelta(models.OriginLocalOptimistic, 17, "me", 500)
	s.ApplySnapshot(models.OriginPollSnapshot, snapshot(
		models.CardClaim{CardNumber: 18, OwnerID: "u2", Timestamp: 100},
	))

	view := s.AuthoritativeView()
	assert.Equal(t, "me", view[17], "локальная отметка должна пережить polling-снимок")
	assert.Equal(t, "u2", view[18])

	// Пустой снимок того же источника убирает только его наблюдения
	s.ApplySnapshot(models.OriginPollSnapshot, nil)
	view = s.AuthoritativeView()
	assert.Equal(t, "me", view[17])
	_, ok := view[18]
	assert.False(t, ok)
}

// TestRelease проверяет освобождение карточки владельцем
func TestRelease(t *testing.T) {
	s := NewStore(400)

	s.ApplyDelta(models.OriginPushDelta, 7, "u1", 100)
	assert.True(t, s.Release(7, "u1"))

	_, taken := s.OwnerOf(7)
	assert.False(t, taken)

	// Освобождение чужой карточки ничего не делает
	s.ApplyDelta(models.OriginPushDelta, 8, "u2", 100)
	assert.False(t, s.Release(8, "u1"))
	owner, _ := s.OwnerOf(8)
	assert.Equal(t, "u2", owner)
}

// TestAvailableCards проверяет дополнение занятого множества
func TestAvailableCards(t *testing.T) {
	s := NewStore(400)

	require.Len(t, s.AvailableCards(), 400)

	s.ApplyDelta(models.OriginLocalOptimistic, 17, "me", 100)
	s.ApplyDelta(models.OriginPushDelta, 18, "u2", 200)

	available := s.AvailableCards()
	assert.Len(t, available, 398)
	assert.NotContains(t, available, 17)
	assert.NotContains(t, available, 18)
	assert.Contains(t, available, 1)
	assert.Contains(t, available, 400)
}

// TestEndToEndScenario воспроизводит сквозной сценарий выбора карточки
func TestEndToEndScenario(t *testing.T) {
	s := NewStore(400)
	require.Len(t, s.AvailableCards(), 400)

	// Пользователь выбирает карточку 17 — немедленная локальная отметка
	s.ApplyDelta(models.OriginLocalOptimistic, 17, "me", 1000)
	assert.Equal(t, "me", s.AuthoritativeView()[17])

	// Сервер подтверждает — заявка сохраняется
	s.ApplyDelta(models.OriginPushDelta, 17, "me", 1100)
	assert.Equal(t, "me", s.AuthoritativeView()[17])

	// Push-дельта: карточку 18 занял U2 позже всех прочих наблюдений
	s.ApplyDelta(models.OriginPushDelta, 18, "u2", 1200)

	available := s.AvailableCards()
	assert.Len(t, available, 398)
	assert.NotContains(t, available, 17)
	assert.NotContains(t, available, 18)
}

// TestClearLocalByOwner проверяет снятие прежней локальной заявки
func TestClearLocalByOwner(t *testing.T) {
	s := NewStore(400)

	s.ApplyDelta(models.OriginLocalOptimistic, 17, "me", 100)
	s.ApplyDelta(models.OriginLocalOptimistic, 20, "other", 100)

	s.ClearLocalByOwner("me")

	_, taken := s.OwnerOf(17)
	assert.False(t, taken)
	owner, _ := s.OwnerOf(20)
	assert.Equal(t, "other", owner)
}
