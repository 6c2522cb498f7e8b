package selection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/bingosync/internal/client/reconcile"
	"github.com/mkravets/bingosync/internal/models"
	pkgapi "github.com/mkravets/bingosync/pkg/api"
)

// Ошибки предусловий выбора карточки
var (
	// ErrSelectionClosed — текущая фаза игры не разрешает выбор
	ErrSelectionClosed = errors.New("card selection is not allowed in current phase")

	// ErrCardTaken — карточка уже занята другим игроком
	ErrCardTaken = errors.New("card is taken by another player")

	// ErrCardProcessing — по карточке уже идет запрос (повторный клик)
	ErrCardProcessing = errors.New("card selection is already in progress")
)

// notificationTTL — сколько живет транзиентное уведомление об ошибке
const notificationTTL = 4 * time.Second

// APIClient — боковой канал, через который уходят команды выбора
type APIClient interface {
	// SelectCard отправляет запрос на выбор карточки
	SelectCard(ctx context.Context, gameID string, req pkgapi.SelectCardRequest) (*pkgapi.SelectCardResponse, error)

	// TakenCards возвращает свежий авторитетный снимок занятых карточек
	TakenCards(ctx context.Context, gameID string) (*pkgapi.TakenCardsResponse, error)
}

// PhaseSource — читаемая координатором фаза игры
type PhaseSource interface {
	Phase() models.GamePhase
}

// NotifyFunc принимает транзиентные уведомления для слоя представления
type NotifyFunc func(n models.Notification)

// Coordinator выдает команды выбора карточки: мгновенная оптимистичная
// отметка, откат при отказе сервера, дедупликация повторных кликов по
// одной карточке и инвариант "одна карточка на игрока" на клиенте до
// подтверждения сервером.
type Coordinator struct {
	store     *reconcile.Store
	phases    PhaseSource
	apiClient APIClient
	notify    NotifyFunc
	log       *slog.Logger

	gameID string
	userID string

	processingTTL time.Duration

	mu         sync.Mutex
	processing map[int]*time.Timer
	requests   map[int]string // карточка -> id последнего запроса
	now        func() time.Time
}

// NewCoordinator создает координатор выбора карточек.
// notify может быть nil; processingTTL ограничивает, как долго карточка
// может висеть в состоянии "обрабатывается" при любом исходе запроса.
func NewCoordinator(
	store *reconcile.Store,
	phases PhaseSource,
	apiClient APIClient,
	gameID, userID string,
	processingTTL time.Duration,
	notify NotifyFunc,
	log *slog.Logger,
) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		store:         store,
		phases:        phases,
		apiClient:     apiClient,
		notify:        notify,
		log:           log,
		gameID:        gameID,
		userID:        userID,
		processingTTL: processingTTL,
		processing:    make(map[int]*time.Timer),
		requests:      make(map[int]string),
		now:           time.Now,
	}
}

// SelectCard выбирает карточку. Локальная отметка ставится немедленно;
// запрос к бекенду уходит асинхронно, и вызов возвращается не дожидаясь
// ответа. Ошибка возвращается только при нарушении предусловий.
func (c *Coordinator) SelectCard(ctx context.Context, cardNumber int) error {
	if !c.phases.Phase().CanSelectCards() {
		return ErrSelectionClosed
	}

	if owner, taken := c.store.OwnerOf(cardNumber); taken && owner != c.userID {
		return ErrCardTaken
	}

	c.mu.Lock()
	if _, busy := c.processing[cardNumber]; busy {
		c.mu.Unlock()
		return ErrCardProcessing
	}

	requestID := uuid.NewString()
	c.requests[cardNumber] = requestID
	c.processing[cardNumber] = time.AfterFunc(c.processingTTL, func() {
		c.clearProcessing(cardNumber)
	})
	c.mu.Unlock()

	// Прежняя локальная заявка снимается до новой: одна карточка на игрока
	c.store.ClearLocalByOwner(c.userID)
	c.store.ApplyDelta(models.OriginLocalOptimistic, cardNumber, c.userID, c.now().UnixMilli())

	go c.submit(ctx, cardNumber, requestID)

	return nil
}

// submit отправляет запрос и применяет исход против стора
func (c *Coordinator) submit(ctx context.Context, cardNumber int, requestID string) {
	resp, err := c.apiClient.SelectCard(ctx, c.gameID, pkgapi.SelectCardRequest{
		CardNumber: cardNumber,
		RequestID:  requestID,
	})

	c.mu.Lock()
	current, ok := c.requests[cardNumber]
	if !ok || current != requestID {
		// Пользователь успел перевыбрать: поздний ответ не должен
		// затереть более новый откат или заявку
		c.mu.Unlock()
		c.log.Debug("stale select response ignored",
			"card", cardNumber, "request_id", requestID)
		return
	}
	delete(c.requests, cardNumber)
	c.mu.Unlock()

	c.clearProcessing(cardNumber)

	if err != nil || !resp.Success {
		c.rollback(cardNumber, err, resp)
		return
	}

	// Подтверждение: локальная отметка остается, и отдельно запрашиваем
	// свежий авторитетный снимок
	c.log.Debug("card claim confirmed", "card", cardNumber, "game_id", c.gameID)
	c.refreshSnapshot(ctx)
}

// rollback снимает оптимистичную отметку и шлет транзиентное уведомление
func (c *Coordinator) rollback(cardNumber int, err error, resp *pkgapi.SelectCardResponse) {
	c.store.ClearLocal(cardNumber)

	message := "не удалось занять карточку"
	if err != nil {
		c.log.Warn("card claim failed", "card", cardNumber, "error", err)
	} else {
		c.log.Info("card claim rejected", "card", cardNumber, "message", resp.Message)
		if resp.Message != "" {
			message = resp.Message
		}
	}

	if c.notify != nil {
		now := c.now()
		c.notify(models.Notification{
			Level:      models.NotifyError,
			Message:    message,
			CardNumber: cardNumber,
			CreatedAt:  now,
			ExpiresAt:  now.Add(notificationTTL),
		})
	}
}

// refreshSnapshot подтягивает свежий снимок занятых карточек
func (c *Coordinator) refreshSnapshot(ctx context.Context) {
	resp, err := c.apiClient.TakenCards(ctx, c.gameID)
	if err != nil {
		// Не фатально: следующий poll или push все поправит
		c.log.Warn("failed to refresh taken cards", "error", err)
		return
	}

	claims := make([]models.CardClaim, 0, len(resp.TakenCards))
	for _, tc := range resp.TakenCards {
		claims = append(claims, models.CardClaim{
			CardNumber: tc.CardNumber,
			OwnerID:    tc.UserID,
			Timestamp:  resp.ServerTime,
		})
	}
	c.store.ApplySnapshot(models.OriginPollSnapshot, claims)
}

// clearProcessing снимает processing-маркер и его таймер
func (c *Coordinator) clearProcessing(cardNumber int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.processing[cardNumber]; ok {
		timer.Stop()
		delete(c.processing, cardNumber)
	}
}

// IsProcessing сообщает, идет ли запрос по карточке
func (c *Coordinator) IsProcessing(cardNumber int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.processing[cardNumber]
	return ok
}

// ReleaseLocal снимает собственную локальную заявку пользователя.
// REST-команды освобождения у бекенда нет: сервер сам освобождает
// карточку по таймауту или при выборе другой.
func (c *Coordinator) ReleaseLocal() {
	c.store.ClearLocalByOwner(c.userID)
}
