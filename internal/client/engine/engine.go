package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkravets/bingosync/internal/client/gamephase"
	"github.com/mkravets/bingosync/internal/client/reconcile"
	"github.com/mkravets/bingosync/internal/client/selection"
	"github.com/mkravets/bingosync/internal/client/seqtrack"
	"github.com/mkravets/bingosync/internal/client/storage"
	"github.com/mkravets/bingosync/internal/client/transport"
	"github.com/mkravets/bingosync/internal/models"
	pkgapi "github.com/mkravets/bingosync/pkg/api"
)

// ErrAlreadyRunning возвращается при повторном Start без Stop
var ErrAlreadyRunning = errors.New("sync engine is already running")

// Channel — push-канал, через который приходят события реального времени
type Channel interface {
	Open(ctx context.Context, gameID, userID string)
	Close()
	Reconnect(ctx context.Context)
	Send(msgType string, payload any) bool
	Subscribe(msgType string, h transport.Handler) (unsubscribe func())
	State() transport.State
}

// APIClient — боковой REST-канал: опрос состояния и команды
type APIClient interface {
	GameByID(ctx context.Context, gameID string) (*pkgapi.Game, error)
	TakenCards(ctx context.Context, gameID string) (*pkgapi.TakenCardsResponse, error)
	SyncState(ctx context.Context, gameID string, sinceSequence int64) (*pkgapi.SyncStateResponse, error)
	SelectCard(ctx context.Context, gameID string, req pkgapi.SelectCardRequest) (*pkgapi.SelectCardResponse, error)
}

// Options настраивают движок синхронизации
type Options struct {
	// PollInterval — период REST-опроса состояния игры
	PollInterval time.Duration

	// PhaseDebounce — дебаунс polling-изменений фазы
	PhaseDebounce time.Duration

	// PushFreshness — окно, в котором push-фаза перекрывает polling
	PushFreshness time.Duration

	// ProcessingTTL — предел жизни processing-маркера выбора карточки
	ProcessingTTL time.Duration

	// ResyncStale — порог устаревания, после которого нужен ресинк
	ResyncStale time.Duration

	// UniverseSize — количество карточек в игре
	UniverseSize int

	// Navigate — одноразовый побочный эффект перехода к живой игре
	Navigate func(gameID string)

	Logger *slog.Logger
}

// Snapshot — read-only срез состояния движка для слоя представления
type Snapshot struct {
	GameID         string
	Phase          models.GamePhase
	Connection     transport.State
	CalledNumbers  []int
	CurrentNumber  int
	LastSequence   int64
	WinnerID       string
	TakenCards     map[int]string
	AvailableCards []int
}

// Engine — корень композиции слоя синхронизации: владеет по одному
// экземпляру каждого компонента, маршрутизирует push-события, гоняет
// REST-опрос и выполняет ресинк, когда трекер последовательности его
// требует или сервер присылает SYNC_REQUEST.
type Engine struct {
	channel   Channel
	apiClient APIClient
	cache     storage.GameStateStorage
	opts      Options
	log       *slog.Logger

	store  *reconcile.Store
	seq    *seqtrack.Tracker
	phases *gamephase.Tracker

	mu            sync.Mutex
	selector      *selection.Coordinator
	gameID        string
	userID        string
	calledNumbers []int
	calledSeen    map[int]bool
	currentNumber int
	winnerID      string
	running       bool
	cancel        context.CancelFunc
	unsubs        []func()

	notifications chan models.Notification
}

// New создает движок. cache может быть nil — тогда теплый старт и
// персистентный кеш отключены.
func New(channel Channel, apiClient APIClient, cache storage.GameStateStorage, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PhaseDebounce <= 0 {
		opts.PhaseDebounce = time.Second
	}
	if opts.PushFreshness <= 0 {
		opts.PushFreshness = 10 * time.Second
	}
	if opts.ProcessingTTL <= 0 {
		opts.ProcessingTTL = 1500 * time.Millisecond
	}
	if opts.ResyncStale <= 0 {
		opts.ResyncStale = 30 * time.Second
	}
	if opts.UniverseSize <= 0 {
		opts.UniverseSize = reconcile.DefaultUniverseSize
	}

	e := &Engine{
		channel:       channel,
		apiClient:     apiClient,
		cache:         cache,
		opts:          opts,
		log:           opts.Logger,
		store:         reconcile.NewStore(opts.UniverseSize),
		seq:           seqtrack.New(opts.ResyncStale),
		calledSeen:    make(map[int]bool),
		notifications: make(chan models.Notification, 16),
	}
	e.phases = gamephase.New(opts.PhaseDebounce, opts.PushFreshness, opts.Navigate, opts.Logger)
	return e
}

// Start начинает синхронизацию для пары (игра, пользователь):
// поднимает кеш для теплого старта, подписывается на push-события,
// открывает канал и запускает цикл опроса. Возвращает ошибку только
// при нарушении предусловий.
func (e *Engine) Start(ctx context.Context, gameID, userID string) error {
	if gameID == "" || userID == "" {
		return errors.New("game id and user id are required")
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	e.gameID = gameID
	e.userID = userID
	e.calledNumbers = nil
	e.calledSeen = make(map[int]bool)
	e.currentNumber = 0
	e.winnerID = ""

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.store.Reset()
	e.seq.Reset()
	e.phases.SetGame(gameID)

	e.selector = selection.NewCoordinator(
		e.store, e.phases, e.apiClient,
		gameID, userID,
		e.opts.ProcessingTTL,
		e.pushNotification,
		e.log,
	)
	e.mu.Unlock()

	e.restoreCache(ctx, gameID)
	e.subscribeAll()
	e.channel.Open(runCtx, gameID, userID)

	go e.pollLoop(runCtx)

	e.log.Info("sync engine started", "game_id", gameID, "user_id", userID)
	return nil
}

// Stop останавливает синхронизацию: снимает подписки, закрывает канал
// и сохраняет кеш для теплого старта
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	e.channel.Close()
	e.persistCache(context.Background())

	e.log.Info("sync engine stopped")
}

// SelectCard выбирает карточку через координатор
func (e *Engine) SelectCard(ctx context.Context, cardNumber int) error {
	e.mu.Lock()
	selector := e.selector
	e.mu.Unlock()

	if selector == nil {
		return errors.New("sync engine is not started")
	}
	return selector.SelectCard(ctx, cardNumber)
}

// ReleaseCard снимает локальную заявку текущего пользователя
func (e *Engine) ReleaseCard() {
	e.mu.Lock()
	selector := e.selector
	e.mu.Unlock()

	if selector != nil {
		selector.ReleaseLocal()
	}
}

// Reconnect повторяет подключение после терминального отказа канала
func (e *Engine) Reconnect(ctx context.Context) {
	e.channel.Reconnect(ctx)
}

// Notifications возвращает канал транзиентных уведомлений.
// Непрочитанные уведомления при переполнении буфера отбрасываются.
func (e *Engine) Notifications() <-chan models.Notification {
	return e.notifications
}

// LastSequence возвращает последний принятый sequence.
// Канал передает его в keep-alive PING для пассивной проверки.
func (e *Engine) LastSequence() int64 {
	return e.seq.LastAccepted()
}

// State возвращает согласованный срез текущего состояния.
// Возвращаемые коллекции — копии, их можно читать без синхронизации.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	called := make([]int, len(e.calledNumbers))
	copy(called, e.calledNumbers)
	snap := Snapshot{
		GameID:        e.gameID,
		CalledNumbers: called,
		CurrentNumber: e.currentNumber,
		WinnerID:      e.winnerID,
	}
	e.mu.Unlock()

	snap.Phase = e.phases.Phase()
	snap.Connection = e.channel.State()
	snap.LastSequence = e.seq.LastAccepted()
	snap.TakenCards = e.store.AuthoritativeView()
	snap.AvailableCards = e.store.AvailableCards()
	return snap
}

// subscribeAll регистрирует обработчики всех push-событий
func (e *Engine) subscribeAll() {
	subs := map[string]transport.Handler{
		pkgapi.MsgConnected:              e.onConnected,
		pkgapi.MsgTakenCardsUpdate:       e.onTakenCardsUpdate,
		pkgapi.MsgCardAvailabilityUpdate: e.onCardAvailabilityUpdate,
		pkgapi.MsgCardSelected:           e.onCardDelta,
		pkgapi.MsgCardSelectedWithNumber: e.onCardDelta,
		pkgapi.MsgCardReleased:           e.onCardReleased,
		pkgapi.MsgGameStatusUpdate:       e.onGameStatusUpdate,
		pkgapi.MsgNumberCalled:           e.onNumberCalled,
		pkgapi.MsgGameStarted:            e.onGameStarted,
		pkgapi.MsgCardSelectionStarted:   e.onCardSelectionStarted,
		pkgapi.MsgBingoClaimed:           e.onBingoClaimed,
		pkgapi.MsgWinnerDeclared:         e.onWinnerDeclared,
		pkgapi.MsgNoWinner:               e.onNoWinner,
		pkgapi.MsgSyncRequest:            e.onSyncRequest,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for msgType, handler := range subs {
		e.unsubs = append(e.unsubs, e.channel.Subscribe(msgType, handler))
	}
}

// onConnected — рукопожатие: запрашиваем свежую доступность карточек
func (e *Engine) onConnected(_ string, _ json.RawMessage) {
	e.mu.Lock()
	gameID, userID := e.gameID, e.userID
	e.mu.Unlock()

	e.log.Debug("push channel handshake complete", "game_id", gameID)
	e.channel.Send(pkgapi.MsgGetCardAvailability, pkgapi.GetCardAvailability{
		GameID: gameID,
		UserID: userID,
	})
}

func (e *Engine) onTakenCardsUpdate(_ string, data json.RawMessage) {
	var msg pkgapi.TakenCardsUpdate
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad taken cards update", "error", err)
		return
	}
	e.applyTakenSnapshot(models.OriginPushSnapshot, msg.TakenCards, msg.ServerTime)
}

func (e *Engine) onCardAvailabilityUpdate(_ string, data json.RawMessage) {
	var msg pkgapi.CardAvailabilityUpdate
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad card availability update", "error", err)
		return
	}
	// Явный список свободных карточек избыточен: дополнение занятого
	// множества стор считает сам
	e.applyTakenSnapshot(models.OriginPushSnapshot, msg.TakenCards, msg.ServerTime)
}

func (e *Engine) onCardDelta(_ string, data json.RawMessage) {
	var msg pkgapi.CardDelta
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad card delta", "error", err)
		return
	}
	ts := msg.ServerTime
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	e.store.ApplyDelta(models.OriginPushDelta, msg.CardNumber, msg.UserID, ts)
}

func (e *Engine) onCardReleased(_ string, data json.RawMessage) {
	var msg pkgapi.CardDelta
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad card released", "error", err)
		return
	}
	e.store.Release(msg.CardNumber, msg.UserID)
}

func (e *Engine) onGameStatusUpdate(_ string, data json.RawMessage) {
	var msg pkgapi.GameStatusUpdate
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad game status update", "error", err)
		return
	}

	e.phases.ApplyPush(msg.Status)
	e.setNumbers(msg.CalledNumbers, msg.CurrentNumber)

	// Снимок несет серверный sequence: это полноценная точка синхронизации
	if msg.Sequence > 0 {
		e.seq.MarkSynced(msg.Sequence)
	}
	e.persistCache(context.Background())
}

func (e *Engine) onNumberCalled(_ string, data json.RawMessage) {
	var msg pkgapi.NumberCalled
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad number called", "error", err)
		return
	}

	if !e.seq.Observe(msg.Sequence) {
		e.log.Warn("sequence gap detected",
			"sequence", msg.Sequence, "last_accepted", e.seq.LastAccepted())
		go e.resync(context.Background())
		return
	}

	e.appendNumber(msg.Number)
	e.persistCache(context.Background())
}

func (e *Engine) onGameStarted(_ string, _ json.RawMessage) {
	e.phases.ApplyPush(pkgapi.GameStatusActive)
}

func (e *Engine) onCardSelectionStarted(_ string, _ json.RawMessage) {
	e.phases.ApplyPush(pkgapi.GameStatusCardSelection)
}

func (e *Engine) onBingoClaimed(_ string, data json.RawMessage) {
	var msg pkgapi.WinnerDeclared
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	e.pushNotification(models.Notification{
		Level:     models.NotifyInfo,
		Message:   "игрок заявил бинго, идет проверка",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Second),
	})
}

func (e *Engine) onWinnerDeclared(_ string, data json.RawMessage) {
	var msg pkgapi.WinnerDeclared
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad winner declared", "error", err)
		return
	}

	e.mu.Lock()
	e.winnerID = msg.UserID
	e.mu.Unlock()

	e.phases.ApplyPush(pkgapi.GameStatusFinished)
	e.pushNotification(models.Notification{
		Level:      models.NotifyInfo,
		Message:    fmt.Sprintf("победитель: %s", msg.UserID),
		CardNumber: msg.CardNumber,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(10 * time.Second),
	})
}

func (e *Engine) onNoWinner(_ string, _ json.RawMessage) {
	e.phases.ApplyPush(pkgapi.GameStatusNoWinner)
	e.pushNotification(models.Notification{
		Level:     models.NotifyInfo,
		Message:   "игра завершена без победителя",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(10 * time.Second),
	})
}

// onSyncRequest — сервер сам попросил клиента свериться.
// forceSync сверяется безусловно, иначе только если трекер считает
// состояние устаревшим.
func (e *Engine) onSyncRequest(_ string, data json.RawMessage) {
	var msg pkgapi.SyncRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		e.log.Warn("bad sync request", "error", err)
		return
	}

	if msg.ForceSync || e.seq.ShouldResync() {
		go e.resync(context.Background())
	}
}

// pollLoop — REST-опрос: фаза игры и снимок занятых карточек.
// Push быстрее, но poll — страховка от пропущенных событий.
func (e *Engine) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	e.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.pollOnce(ctx)
			if e.seq.ShouldResync() {
				e.resync(ctx)
			}
		}
	}
}

// pollOnce выполняет один цикл опроса
func (e *Engine) pollOnce(ctx context.Context) {
	e.mu.Lock()
	gameID := e.gameID
	e.mu.Unlock()

	game, err := e.apiClient.GameByID(ctx, gameID)
	if err != nil {
		e.log.Debug("poll: game request failed", "error", err)
	} else {
		e.phases.ApplyPoll(game.Status)
		if len(game.CalledNumbers) > 0 {
			e.setNumbers(game.CalledNumbers, game.CurrentNumber)
		}
	}

	taken, err := e.apiClient.TakenCards(ctx, gameID)
	if err != nil {
		e.log.Debug("poll: taken cards request failed", "error", err)
		return
	}
	e.applyTakenSnapshot(models.OriginPollSnapshot, taken.TakenCards, taken.ServerTime)
	e.persistCache(ctx)
}

// resync подтягивает полное состояние игры с сервера.
// Пропуски sequence чинятся молча, пользователю ничего не показываем.
func (e *Engine) resync(ctx context.Context) {
	if !e.seq.TryBeginSync() {
		return
	}

	e.mu.Lock()
	gameID := e.gameID
	e.mu.Unlock()

	resp, err := e.apiClient.SyncState(ctx, gameID, e.seq.LastAccepted())
	if err != nil {
		e.seq.FailSync()
		e.log.Warn("resync failed", "game_id", gameID, "error", err)
		return
	}

	// Ответ ресинка авторитетен: применяется как push, минуя дебаунс
	e.phases.ApplyPush(resp.Status)
	e.setNumbers(resp.CalledNumbers, resp.CurrentNumber)
	e.applyTakenSnapshot(models.OriginPollSnapshot, resp.TakenCards, resp.ServerTime)
	e.seq.MarkSynced(resp.Sequence)
	e.persistCache(ctx)

	e.log.Info("resync complete", "game_id", gameID, "sequence", resp.Sequence)
}

// applyTakenSnapshot применяет снимок занятых карточек к стору
func (e *Engine) applyTakenSnapshot(origin models.ClaimOrigin, cards []pkgapi.TakenCard, serverTime int64) {
	if serverTime == 0 {
		serverTime = time.Now().UnixMilli()
	}
	claims := make([]models.CardClaim, 0, len(cards))
	for _, tc := range cards {
		claims = append(claims, models.CardClaim{
			CardNumber: tc.CardNumber,
			OwnerID:    tc.UserID,
			Timestamp:  serverTime,
		})
	}
	e.store.ApplySnapshot(origin, claims)
}

// setNumbers заменяет список вызванных номеров серверным снимком
func (e *Engine) setNumbers(called []int, current int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calledNumbers = make([]int, len(called))
	copy(e.calledNumbers, called)
	e.calledSeen = make(map[int]bool, len(called))
	for _, n := range called {
		e.calledSeen[n] = true
	}
	if current != 0 {
		e.currentNumber = current
	}
}

// appendNumber добавляет один вызванный номер
func (e *Engine) appendNumber(number int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.calledSeen[number] {
		e.calledSeen[number] = true
		e.calledNumbers = append(e.calledNumbers, number)
	}
	e.currentNumber = number
}

// pushNotification кладет уведомление в канал без блокировки
func (e *Engine) pushNotification(n models.Notification) {
	select {
	case e.notifications <- n:
	default:
		e.log.Debug("notification dropped, buffer full", "message", n.Message)
	}
}

// restoreCache поднимает кеш для теплого старта: показать хоть что-то
// сразу, а полный ресинк догонит
func (e *Engine) restoreCache(ctx context.Context, gameID string) {
	if e.cache == nil {
		return
	}

	st, err := e.cache.GetGameState(ctx, gameID)
	if err != nil {
		if !errors.Is(err, storage.ErrGameStateNotFound) {
			e.log.Warn("failed to restore cached game state", "error", err)
		}
		return
	}

	e.mu.Lock()
	e.calledNumbers = append([]int(nil), st.CalledNumbers...)
	e.calledSeen = make(map[int]bool, len(st.CalledNumbers))
	for _, n := range st.CalledNumbers {
		e.calledSeen[n] = true
	}
	e.currentNumber = st.CurrentNumber
	e.mu.Unlock()

	e.store.ApplySnapshot(models.OriginPollSnapshot, st.TakenCards)

	// Restore не отмечает свежий ресинк: ShouldResync останется
	// истинным и первый же цикл сверится с сервером
	e.seq.Restore(st.LastSequence)

	e.log.Info("restored cached game state",
		"game_id", gameID, "sequence", st.LastSequence)
}

// persistCache сохраняет срез состояния для теплого старта
func (e *Engine) persistCache(ctx context.Context) {
	if e.cache == nil {
		return
	}

	e.mu.Lock()
	gameID := e.gameID
	called := append([]int(nil), e.calledNumbers...)
	current := e.currentNumber
	e.mu.Unlock()

	if gameID == "" {
		return
	}

	st := &storage.GameState{
		GameID:        gameID,
		Phase:         e.phases.Phase().String(),
		CalledNumbers: called,
		TakenCards:    e.store.Claims(),
		CurrentNumber: current,
		LastSequence:  e.seq.LastAccepted(),
		UpdatedAt:     time.Now().UnixMilli(),
	}
	if err := e.cache.SaveGameState(ctx, st); err != nil {
		e.log.Warn("failed to persist game state", "error", err)
	}
}
