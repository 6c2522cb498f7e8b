package reconcile

import (
	"sort"
	"sync"

	"github.com/mkravets/bingosync/internal/models"
)

// DefaultUniverseSize — количество карточек в игре
const DefaultUniverseSize = 400

// Store сводит наблюдения о занятости карточек из четырех независимых
// каналов (push-снимок, push-дельта, polling-снимок, локальная
// оптимистичная отметка) в одну авторитетную картину.
// Единственная гарантия порядка между каналами — last-writer-wins по
// timestamp наблюдения; никакой глобальной блокировки между каналами
// нет, конкурирующие обновления ожидаемы и разрешаются правилом
// слияния, а не взаимным исключением.
type Store struct {
	mu       sync.RWMutex
	claims   map[models.ClaimOrigin]map[int]models.CardClaim
	universe int
}

// NewStore создает стор на universeSize карточек (1..universeSize)
func NewStore(universeSize int) *Store {
	if universeSize <= 0 {
		universeSize = DefaultUniverseSize
	}
	return &Store{
		claims:   make(map[models.ClaimOrigin]map[int]models.CardClaim),
		universe: universeSize,
	}
}

// ApplySnapshot целиком заменяет наблюдения данного источника.
// Наблюдения других источников не затрагиваются.
func (s *Store) ApplySnapshot(origin models.ClaimOrigin, claims []models.CardClaim) {
	byCard := make(map[int]models.CardClaim, len(claims))
	for _, c := range claims {
		c.Origin = origin
		byCard[c.CardNumber] = c
	}

	s.mu.Lock()
	s.claims[origin] = byCard
	s.mu.Unlock()
}

// ApplyDelta добавляет или обновляет одно наблюдение.
// Выигрывает строго больший timestamp; при равенстве остается
// существующее наблюдение — слияние идемпотентно и не зависит от
// порядка доставки дублей. Возвращает true, если наблюдение принято.
func (s *Store) ApplyDelta(origin models.ClaimOrigin, cardNumber int, ownerID string, timestamp int64) bool {
	claim := models.CardClaim{
		CardNumber: cardNumber,
		OwnerID:    ownerID,
		Timestamp:  timestamp,
		Origin:     origin,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byCard := s.claims[origin]
	if byCard == nil {
		byCard = make(map[int]models.CardClaim)
		s.claims[origin] = byCard
	}

	if existing, ok := byCard[cardNumber]; ok && !(claim.Timestamp > existing.Timestamp) {
		return false
	}

	byCard[cardNumber] = claim
	return true
}

// Release убирает наблюдения о карточке, принадлежащие ownerID.
// Чужие (более новые) наблюдения о той же карточке остаются на месте,
// поэтому освобождение не затирает уже перехваченную другим игроком
// карточку. Возвращает true, если хоть одно наблюдение снято.
func (s *Store) Release(cardNumber int, ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := false
	for _, byCard := range s.claims {
		if c, ok := byCard[cardNumber]; ok && c.OwnerID == ownerID {
			delete(byCard, cardNumber)
			released = true
		}
	}
	return released
}

// ClearLocal снимает локальную оптимистичную отметку с карточки
// (откат неудавшегося выбора)
func (s *Store) ClearLocal(cardNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byCard := s.claims[models.OriginLocalOptimistic]; byCard != nil {
		delete(byCard, cardNumber)
	}
}

// ClearLocalByOwner снимает все локальные отметки данного пользователя.
// Используется при выборе новой карточки: у игрока может быть только
// одна карточка, и прежняя локальная заявка снимается до новой.
func (s *Store) ClearLocalByOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCard := s.claims[models.OriginLocalOptimistic]
	for num, c := range byCard {
		if c.OwnerID == ownerID {
			delete(byCard, num)
		}
	}
}

// AuthoritativeView возвращает слитую картину карточка -> владелец.
// Картина вычисляется заново при каждом вызове (read-through, без
// кеша), чтобы читатель никогда не увидел частично обновленное
// промежуточное состояние.
func (s *Store) AuthoritativeView() map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := make(map[int]string)
	best := make(map[int]models.CardClaim)

	for _, byCard := range s.claims {
		for num, c := range byCard {
			if cur, ok := best[num]; !ok || c.Supersedes(cur) {
				best[num] = c
			}
		}
	}

	for num, c := range best {
		view[num] = c.OwnerID
	}
	return view
}

// OwnerOf возвращает авторитетного владельца карточки
func (s *Store) OwnerOf(cardNumber int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best models.CardClaim
	found := false
	for _, byCard := range s.claims {
		if c, ok := byCard[cardNumber]; ok {
			if !found || c.Supersedes(best) {
				best = c
				found = true
			}
		}
	}

	if !found {
		return "", false
	}
	return best.OwnerID, true
}

// AvailableCards возвращает отсортированный список свободных карточек —
// дополнение занятого множества до полного диапазона 1..universe
func (s *Store) AvailableCards() []int {
	taken := s.AuthoritativeView()

	available := make([]int, 0, s.universe-len(taken))
	for n := 1; n <= s.universe; n++ {
		if _, ok := taken[n]; !ok {
			available = append(available, n)
		}
	}
	sort.Ints(available)
	return available
}

// Claims возвращает копию всех авторитетных наблюдений.
// Используется для сохранения кеша состояния игры.
func (s *Store) Claims() []models.CardClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := make(map[int]models.CardClaim)
	for _, byCard := range s.claims {
		for num, c := range byCard {
			if cur, ok := best[num]; !ok || c.Supersedes(cur) {
				best[num] = c
			}
		}
	}

	claims := make([]models.CardClaim, 0, len(best))
	for _, c := range best {
		claims = append(claims, c)
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].CardNumber < claims[j].CardNumber })
	return claims
}

// Reset очищает все наблюдения (новая игровая сессия)
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.claims = make(map[models.ClaimOrigin]map[int]models.CardClaim)
}
