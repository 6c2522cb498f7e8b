package gamephase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mkravets/bingosync/internal/models"
)

// NavigateFunc — одноразовый побочный эффект перехода к живой игре
type NavigateFunc func(gameID string)

// Tracker выводит единую эффективную фазу игры из двух источников:
// значения от REST-опроса (низкий приоритет) и push-событий (высокий
// приоритет). Polling-изменения дебаунсятся, чтобы два почти
// одновременных REST-ответа не давали видимого мерцания; push
// применяется немедленно — это авторитетная правда реального времени.
type Tracker struct {
	mu sync.Mutex

	phase      models.GamePhase
	gameID     string
	lastChange time.Time
	lastPush   time.Time
	navigated  bool
	latched    bool

	debounce      time.Duration
	pushFreshness time.Duration
	navigate      NavigateFunc
	log           *slog.Logger
	now           func() time.Time
}

// New создает трекер фазы. navigate может быть nil.
func New(debounce, pushFreshness time.Duration, navigate NavigateFunc, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		phase:         models.PhaseLoading,
		debounce:      debounce,
		pushFreshness: pushFreshness,
		navigate:      navigate,
		log:           log,
		now:           time.Now,
	}
}

// SetGame начинает отслеживание новой игровой сессии: фаза сбрасывается
// в Loading, одноразовая навигация взводится заново. Только здесь
// разрешен откат фазы назад.
func (t *Tracker) SetGame(gameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gameID == gameID {
		return
	}
	t.gameID = gameID
	t.phase = models.PhaseLoading
	t.navigated = false
	t.latched = false
	t.lastChange = time.Time{}
	t.lastPush = time.Time{}
}

// ApplyPoll применяет фазу из REST-опроса. Возвращает true, если фаза
// изменилась. Применяется только когда нет свежего push-значения и
// с прошлой смены фазы прошел интервал дебаунса.
func (t *Tracker) ApplyPoll(status string) bool {
	phase, ok := models.PhaseFromStatus(status)
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	// Свежий push перекрывает polling: poll-ответ мог устареть еще в пути
	if !t.lastPush.IsZero() && now.Sub(t.lastPush) < t.pushFreshness {
		return false
	}

	// Дебаунс против мерцания от пары почти одновременных REST-ответов
	if !t.lastChange.IsZero() && now.Sub(t.lastChange) < t.debounce {
		return false
	}

	return t.applyLocked(phase, now)
}

// ApplyPush применяет фазу из push-события. Дебаунс не действует.
// Возвращает true, если фаза изменилась.
func (t *Tracker) ApplyPush(status string) bool {
	phase, ok := models.PhaseFromStatus(status)
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.lastPush = now
	return t.applyLocked(phase, now)
}

// applyLocked применяет фазу с учетом фиксации Active.
// Вызывается под мьютексом.
func (t *Tracker) applyLocked(phase models.GamePhase, now time.Time) bool {
	// После Active откат к более ранней фазе запрещен: клиент уже
	// перешел к живой игре, вернуть его назад может только новая сессия
	if t.latched && phase.Earlier() {
		return false
	}

	if phase == t.phase {
		return false
	}

	t.log.Debug("game phase changed",
		"game_id", t.gameID,
		"from", t.phase.String(),
		"to", phase.String(),
	)

	t.phase = phase
	t.lastChange = now

	if phase == models.PhaseActive {
		t.latched = true
	}

	if phase == models.PhaseActive && !t.navigated {
		t.navigated = true
		if t.navigate != nil {
			// Одноразовый переход; guard выше гарантирует ровно один вызов
			t.navigate(t.gameID)
		}
	}

	return true
}

// Phase возвращает текущую эффективную фазу
func (t *Tracker) Phase() models.GamePhase {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.phase
}
