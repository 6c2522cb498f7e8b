package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/mkravets/bingosync/pkg/api"
)

// State represents the current state of the push channel connection.
type State int

const (
	// StateClosed — соединения нет (начальное состояние или после Close)
	StateClosed State = iota

	// StateConnecting — идет установка соединения
	StateConnecting

	// StateOpen — соединение установлено и готово
	StateOpen

	// StateReconnecting — соединение потеряно, идет переподключение
	StateReconnecting

	// StateFailed — попытки исчерпаны, нужен явный Reconnect
	StateFailed
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 3 * time.Second
)

// Handler обрабатывает одно сообщение push-канала
type Handler func(msgType string, data json.RawMessage)

// Options настраивают канал
type Options struct {
	// URL — базовый адрес push-канала (ws:// или wss://)
	URL string

	// Token — bearer токен сессии, передается при рукопожатии
	Token string

	// HeartbeatInterval — период keep-alive PING
	HeartbeatInterval time.Duration

	// BackoffBase — стартовая задержка переподключения
	BackoffBase time.Duration

	// BackoffCap — потолок задержки переподключения
	BackoffCap time.Duration

	// MaxAttempts — подряд неудачных попыток до StateFailed
	MaxAttempts uint64

	// Sequence возвращает текущий принятый sequence для PING.
	// Сервер использует его для пассивной проверки синхронизации.
	Sequence func() int64

	// OnStateChange вызывается при каждой смене состояния канала
	OnStateChange func(State)

	Logger *slog.Logger
}

// Channel владеет одним двунаправленным соединением с бекендом:
// автопереподключение с экспоненциальной задержкой, heartbeat и
// типизированная подписка на события. Бизнес-логики здесь нет.
type Channel struct {
	opts Options
	log  *slog.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	gameID      string
	userID      string
	intentional bool
	attempts    int
	gen         int
	cancel      context.CancelFunc
	lastActive  time.Time

	subMu   sync.RWMutex
	subs    map[string]map[int]Handler
	nextSub int
}

// NewChannel создает канал. Соединение не открывается до Open.
func NewChannel(opts Options) *Channel {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 5
	}
	return &Channel{
		opts:  opts,
		log:   log,
		state: StateClosed,
		subs:  make(map[string]map[int]Handler),
	}
}

// Open открывает соединение для пары (игра, пользователь). Идемпотентен:
// повторный вызов для той же живой пары — no-op; новая пара сначала
// закрывает прежнее соединение. Ошибки установки не возвращаются:
// канал сам уходит в переподключение, а исчерпав попытки — в StateFailed.
// Без идентификаторов соединение не открывается вовсе.
func (c *Channel) Open(ctx context.Context, gameID, userID string) {
	if gameID == "" || userID == "" {
		return
	}

	c.mu.Lock()
	samePair := c.gameID == gameID && c.userID == userID
	alive := c.state == StateOpen || c.state == StateConnecting || c.state == StateReconnecting
	if samePair && alive {
		c.mu.Unlock()
		return
	}

	c.teardownLocked()
	c.gameID = gameID
	c.userID = userID
	c.intentional = false
	c.attempts = 0
	c.gen++
	gen := c.gen

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	go c.run(runCtx, gen, gameID, userID)
}

// Reconnect повторяет подключение после терминального отказа
func (c *Channel) Reconnect(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateFailed || c.gameID == "" {
		c.mu.Unlock()
		return
	}
	gameID, userID := c.gameID, c.userID
	c.attempts = 0
	c.gen++
	gen := c.gen

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	go c.run(runCtx, gen, gameID, userID)
}

// Close закрывает соединение намеренно: автопереподключение
// подавляется, таймеры освобождаются
func (c *Channel) Close() {
	c.mu.Lock()
	c.intentional = true
	c.teardownLocked()
	c.setStateLocked(StateClosed)
	c.mu.Unlock()
}

// teardownLocked гасит текущее соединение и его горутины.
// Вызывается под мьютексом.
func (c *Channel) teardownLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
		c.conn = nil
	}
	c.gen++
}

// Send отправляет сообщение. Возвращает false, если канал не открыт
// или запись не удалась: для вызывающего это "повторим позже",
// а не ошибка.
func (c *Channel) Send(msgType string, payload any) bool {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if state != StateOpen || conn == nil {
		return false
	}

	env := api.Envelope{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.log.Warn("failed to marshal outgoing message", "type", msgType, "error", err)
			return false
		}
		env.Data = data
	}

	buf, err := json.Marshal(env)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, buf); err != nil {
		c.log.Debug("send failed", "type", msgType, "error", err)
		return false
	}
	return true
}

// Subscribe регистрирует обработчик для типа сообщения и возвращает
// функцию отписки. Регистраций на один тип может быть несколько;
// встроенные типы (PONG) всегда обрабатываются внутренней логикой
// до пользовательских обработчиков.
func (c *Channel) Subscribe(msgType string, h Handler) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[msgType] == nil {
		c.subs[msgType] = make(map[int]Handler)
	}
	c.subs[msgType][id] = h
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs[msgType], id)
		c.subMu.Unlock()
	}
}

// State возвращает текущее состояние канала
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts возвращает число подряд неудачных попыток подключения
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// LastActivity возвращает момент последнего входящего сообщения
func (c *Channel) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// setStateLocked меняет состояние и зовет колбек. Под мьютексом.
func (c *Channel) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.opts.OnStateChange != nil {
		go c.opts.OnStateChange(s)
	}
}

// run — жизненный цикл одного поколения соединения: подключение с
// backoff, чтение до обрыва, решение о переподключении
func (c *Channel) run(ctx context.Context, gen int, gameID, userID string) {
	for {
		conn, err := c.dialWithBackoff(ctx, gameID, userID)
		if err != nil {
			c.mu.Lock()
			if c.gen != gen {
				c.mu.Unlock()
				return
			}
			if ctx.Err() != nil || c.intentional {
				c.setStateLocked(StateClosed)
			} else {
				c.log.Error("connection attempts exhausted",
					"game_id", gameID, "attempts", c.attempts)
				c.setStateLocked(StateFailed)
			}
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			_ = conn.Close(websocket.StatusNormalClosure, "superseded")
			return
		}
		c.conn = conn
		c.attempts = 0
		c.lastActive = time.Now()
		c.setStateLocked(StateOpen)
		c.mu.Unlock()

		c.log.Info("push channel open", "game_id", gameID, "user_id", userID)

		hbCtx, stopHeartbeat := context.WithCancel(ctx)
		go c.heartbeat(hbCtx)

		readErr := c.readLoop(ctx, conn)
		stopHeartbeat()

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.conn = nil

		if ctx.Err() != nil || c.intentional {
			c.setStateLocked(StateClosed)
			c.mu.Unlock()
			return
		}

		// Нормальное закрытие со стороны сервера не переподключаем
		switch websocket.CloseStatus(readErr) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			c.setStateLocked(StateClosed)
			c.mu.Unlock()
			return
		}

		c.setStateLocked(StateReconnecting)
		c.mu.Unlock()

		c.log.Warn("push channel lost, reconnecting", "game_id", gameID, "error", readErr)
	}
}

// dialWithBackoff подключается с экспоненциальной задержкой:
// старт с BackoffBase, удвоение, потолок BackoffCap, отказ после
// MaxAttempts подряд неудачных попыток
func (c *Channel) dialWithBackoff(ctx context.Context, gameID, userID string) (*websocket.Conn, error) {
	backoff := retry.NewExponential(c.opts.BackoffBase)
	backoff = retry.WithCappedDuration(c.opts.BackoffCap, backoff)
	backoff = retry.WithMaxRetries(c.opts.MaxAttempts-1, backoff)

	endpoint, err := c.endpoint(gameID, userID)
	if err != nil {
		return nil, err
	}

	var conn *websocket.Conn
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		wc, _, err := websocket.Dial(dialCtx, endpoint, nil)
		if err != nil {
			c.mu.Lock()
			c.attempts++
			attempts := c.attempts
			if c.state == StateConnecting || c.state == StateOpen {
				c.setStateLocked(StateReconnecting)
			}
			c.mu.Unlock()

			c.log.Debug("dial failed", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		conn = wc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return conn, nil
}

// endpoint собирает адрес push-канала для пары (игра, пользователь)
func (c *Channel) endpoint(gameID, userID string) (string, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", fmt.Errorf("invalid ws url: %w", err)
	}
	u.Path = "/ws"

	q := u.Query()
	q.Set("game_id", gameID)
	q.Set("user_id", userID)
	if c.opts.Token != "" {
		q.Set("token", c.opts.Token)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// readLoop читает и раздает входящие сообщения до обрыва соединения
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

// dispatch разбирает конверт и вызывает обработчики.
// Встроенная обработка идет первой: PONG потребляется и отбрасывается,
// его единственное назначение — подтверждение живости.
func (c *Channel) dispatch(data []byte) {
	var env api.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warn("bad push message", "error", err)
		return
	}

	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()

	if env.Type == api.MsgPong {
		return
	}

	c.subMu.RLock()
	handlers := make([]Handler, 0, len(c.subs[env.Type]))
	for _, h := range c.subs[env.Type] {
		handlers = append(handlers, h)
	}
	c.subMu.RUnlock()

	for _, h := range handlers {
		h(env.Type, env.Data)
	}
}

// heartbeat шлет keep-alive PING с текущим sequence, пока канал открыт
func (c *Channel) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var seq int64
			if c.opts.Sequence != nil {
				seq = c.opts.Sequence()
			}
			c.Send(api.MsgPing, api.PingMessage{
				ClientTime: time.Now().UnixMilli(),
				Sequence:   seq,
			})
		}
	}
}
