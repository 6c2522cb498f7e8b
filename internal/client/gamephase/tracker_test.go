package gamephase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkravets/bingosync/internal/models"
)

func newTestTracker(navigate NavigateFunc) (*Tracker, *time.Time) {
	tr := New(time.Second, 10*time.Second, navigate, nil)
	current := time.Now()
	tr.now = func() time.Time { return current }
	tr.SetGame("game-1")
	return tr, &current
}

// TestApplyPoll_Debounce проверяет, что два polling-изменения с
// интервалом 200мс применяют только первое
func TestApplyPoll_Debounce(t *testing.T) {
	tr, current := newTestTracker(nil)

	assert.True(t, tr.ApplyPoll("waiting"))
	assert.Equal(t, models.PhaseWaitingForPlayers, tr.Phase())

	*current = current.Add(200 * time.Millisecond)
	assert.False(t, tr.ApplyPoll("card_selection"))
	assert.Equal(t, models.PhaseWaitingForPlayers, tr.Phase())

	// После истечения дебаунса изменение проходит
	*current = current.Add(time.Second)
	assert.True(t, tr.ApplyPoll("card_selection"))
	assert.Equal(t, models.PhaseCardSelection, tr.Phase())
}

// TestApplyPush_BypassesDebounce проверяет, что push применяется
// немедленно даже сразу после polling-изменения
func TestApplyPush_BypassesDebounce(t *testing.T) {
	tr, current := newTestTracker(nil)

	assert.True(t, tr.ApplyPoll("waiting"))

	*current = current.Add(10 * time.Millisecond)
	assert.True(t, tr.ApplyPush("active"))
	assert.Equal(t, models.PhaseActive, tr.Phase())
}

// TestApplyPoll_IgnoredWhileFreshPush проверяет приоритет push:
// при расхождении и свежем push polling проигрывает безусловно
func TestApplyPoll_IgnoredWhileFreshPush(t *testing.T) {
	tr, current := newTestTracker(nil)

	assert.True(t, tr.ApplyPush("card_selection"))

	// Устаревший poll-ответ пришел через 2 секунды — игнорируется
	*current = current.Add(2 * time.Second)
	assert.False(t, tr.ApplyPoll("waiting"))
	assert.Equal(t, models.PhaseCardSelection, tr.Phase())

	// Push устарел — polling снова принимается
	*current = current.Add(11 * time.Second)
	assert.True(t, tr.ApplyPoll("waiting"))
}

// TestNavigation_OneShot проверяет ровно один вызов навигации при
// дублирующих переходах в Active
func TestNavigation_OneShot(t *testing.T) {
	var navigations []string
	tr, current := newTestTracker(func(gameID string) {
		navigations = append(navigations, gameID)
	})

	assert.True(t, tr.ApplyPush("active"))

	// Дубль push-события и переход через Finished обратно в Active
	assert.False(t, tr.ApplyPush("active"))
	*current = current.Add(2 * time.Second)
	tr.ApplyPush("finished")
	tr.ApplyPush("active")

	assert.Equal(t, []string{"game-1"}, navigations)
}

// TestNavigation_RearmedOnNewGame проверяет повторное взведение
// навигации при новой игровой сессии
func TestNavigation_RearmedOnNewGame(t *testing.T) {
	var count int
	tr, _ := newTestTracker(func(string) { count++ })

	tr.ApplyPush("active")
	assert.Equal(t, 1, count)

	tr.SetGame("game-2")
	assert.Equal(t, models.PhaseLoading, tr.Phase())

	tr.ApplyPush("active")
	assert.Equal(t, 2, count)
}

// TestActiveLatch проверяет запрет отката фазы после Active
func TestActiveLatch(t *testing.T) {
	tr, current := newTestTracker(nil)

	tr.ApplyPush("active")

	// Запоздавший polling со старой фазой не откатывает
	*current = current.Add(15 * time.Second)
	assert.False(t, tr.ApplyPoll("card_selection"))
	assert.Equal(t, models.PhaseActive, tr.Phase())

	// Переход вперед разрешен
	assert.True(t, tr.ApplyPush("finished"))

	// Возврат к ранней фазе по-прежнему запрещен до новой игры
	*current = current.Add(15 * time.Second)
	assert.False(t, tr.ApplyPoll("waiting"))

	tr.SetGame("game-2")
	assert.True(t, tr.ApplyPoll("waiting"))
}

// TestApply_UnknownStatus проверяет игнор неизвестных статусов
func TestApply_UnknownStatus(t *testing.T) {
	tr, _ := newTestTracker(nil)

	assert.False(t, tr.ApplyPush("bogus"))
	assert.Equal(t, models.PhaseLoading, tr.Phase())
}
