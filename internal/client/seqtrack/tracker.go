package seqtrack

import (
	"sync"
	"time"
)

// Tracker следит за порядком нумерованных push-событий (вызовы номеров).
// Пропуск в sequence означает потерянное событие: короткий обрыв сети
// мог проглотить push, и локальное состояние молча устарело бы до
// следующего полного опроса. Периодический принудительный ресинк
// ограничивает максимальное окно устаревания даже если детекция
// пропусков сама дала сбой.
type Tracker struct {
	mu sync.Mutex

	lastAccepted   int64
	lastSync       time.Time
	needsResync    bool
	syncInProgress bool

	staleAfter time.Duration
	now        func() time.Time
}

// New создает трекер. staleAfter — порог свежести: если с последней
// успешной синхронизации прошло больше, требуется ресинк.
func New(staleAfter time.Duration) *Tracker {
	return &Tracker{
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Observe вызывается для каждого события с sequence.
// Возвращает true, если событие принято (идет строго следующим).
// При несовпадении ставится флаг needs-resync, но lastAccepted НЕ
// двигается: следующее корректное событие сверяется с тем же ожидаемым
// значением, и один настоящий пропуск не порождает каскад ложных.
func (t *Tracker) Observe(sequence int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	expected := t.lastAccepted + 1
	if sequence == expected {
		t.lastAccepted = sequence
		return true
	}

	t.needsResync = true
	return false
}

// ShouldResync сообщает, требуется ли полный ресинк состояния
func (t *Tracker) ShouldResync() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.needsResync {
		return true
	}
	return t.now().Sub(t.lastSync) > t.staleAfter
}

// MarkSynced фиксирует успешный ресинк: принимает серверный sequence,
// снимает флаг и обновляет отметку времени
func (t *Tracker) MarkSynced(serverSequence int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastAccepted = serverSequence
	t.needsResync = false
	t.syncInProgress = false
	t.lastSync = t.now()
}

// TryBeginSync отмечает начало ресинка; false если ресинк уже идет
func (t *Tracker) TryBeginSync() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.syncInProgress {
		return false
	}
	t.syncInProgress = true
	return true
}

// FailSync снимает отметку идущего ресинка без фиксации успеха
func (t *Tracker) FailSync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.syncInProgress = false
}

// LastAccepted возвращает последний принятый sequence
func (t *Tracker) LastAccepted() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastAccepted
}

// Restore выставляет lastAccepted из кеша без отметки о свежем ресинке.
// Используется при теплом старте: ShouldResync останется истинным,
// и клиент сразу сверится с сервером.
func (t *Tracker) Restore(sequence int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastAccepted = sequence
}

// Reset обнуляет трекер при полном переподключении
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastAccepted = 0
	t.needsResync = false
	t.syncInProgress = false
	t.lastSync = time.Time{}
}
