package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// DefaultTimeout bounds every exchange unless WithTimeout says otherwise
const DefaultTimeout = 30 * time.Second

var (
	// ErrDisposed is returned once the session has been torn down
	ErrDisposed = errors.New("chat session disposed")

	// ErrSuperseded settles an exchange replaced by a newer message
	ErrSuperseded = errors.New("superseded by a newer message")
)

// Transport sends one message and returns the reply
type Transport interface {
	Send(ctx context.Context, message string) (string, error)
}

// StreamingTransport can deliver the reply in pieces as it is generated
type StreamingTransport interface {
	Transport
	SendStream(ctx context.Context, message string, onChunk func(string)) (string, error)
}

// HistoryTransport keeps conversation context of its own. The session
// sends through Reply, which leaves that context alone, and calls Record
// under its lock only for replies it applies.
type HistoryTransport interface {
	Transport
	Reply(ctx context.Context, message string, onChunk func(string)) (string, error)
	Record(message, reply string)
}

// State is the controller state
type State int

const (
	StateIdle State = iota
	StateSending
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Exchange tracks one Send from the user turn to the settled reply
type Exchange struct {
	ID string

	done    chan struct{}
	reply   string
	err     error
	outcome State
}

func newExchange() *Exchange {
	return &Exchange{ID: uuid.NewString(), done: make(chan struct{})}
}

func (e *Exchange) finish(reply string, err error, outcome State) {
	e.reply = reply
	e.err = err
	e.outcome = outcome
	close(e.done)
}

// Done is closed once the exchange has settled
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Result returns the reply and error. Only valid after Done is closed.
func (e *Exchange) Result() (string, error) {
	return e.reply, e.err
}

// Outcome is StateResolved or StateFailed for an applied exchange and
// StateIdle for one that was superseded or disposed
func (e *Exchange) Outcome() State {
	return e.outcome
}

// Wait blocks until the exchange settles or ctx is done
func (e *Exchange) Wait(ctx context.Context) (string, error) {
	select {
	case <-e.done:
		return e.reply, e.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// pendingRequest is the single in-flight request of a session
type pendingRequest struct {
	id       uint64
	text     string
	exchange *Exchange
	cancel   context.CancelFunc
}

// Session drives a Conversation against a Transport.
// At most one request is in flight; a new Send cancels the previous one
// and late results of cancelled requests are dropped.
type Session struct {
	transport      Transport
	timeout        time.Duration
	greeting       string
	detachedErrors bool
	onChange       func()
	logger         zerolog.Logger

	mu       sync.Mutex
	conv     *Conversation
	state    State
	seq      uint64
	pending  *pendingRequest
	disposed bool

	wg sync.WaitGroup
}

// SessionOption is a function that configures a Session
type SessionOption func(*Session)

// WithGreeting opens the conversation with a model turn
func WithGreeting(text string) SessionOption {
	return func(s *Session) {
		s.greeting = text
	}
}

// WithTimeout sets the per-exchange timeout
func WithTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithDetachedErrors appends failures as a separate error turn and leaves
// the empty pending turn in place
func WithDetachedErrors() SessionOption {
	return func(s *Session) {
		s.detachedErrors = true
	}
}

// WithOnChange registers a callback run after every change made by a
// request goroutine: streamed chunks and the settled reply. Send does not
// call it, so the caller that sent redraws itself. It is called without
// the session lock held.
func WithOnChange(fn func()) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithClock overrides the time source used for turn timestamps
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.conv.now = now
	}
}

// NewSession creates a session over transport
func NewSession(transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport: transport,
		timeout:   DefaultTimeout,
		logger:    zerolog.Nop(),
		conv:      NewConversation(),
		state:     StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.greeting != "" {
		s.conv.AppendModel(s.greeting)
	}
	return s
}

// Send starts a new exchange. Blank text is rejected before any turn is
// added. An exchange already in flight is cancelled and its result ignored.
func (s *Session) Send(ctx context.Context, text string) (*Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierrors.NewEmptyMessageError()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrDisposed
	}

	if prev := s.pending; prev != nil {
		prev.cancel()
		s.logger.Debug().Str("exchange", prev.exchange.ID).Msg("superseded by new message")
	}

	s.seq++
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	req := &pendingRequest{id: s.seq, text: text, exchange: newExchange(), cancel: cancel}
	s.pending = req

	s.conv.AppendUser(text)
	s.conv.AppendPendingModelTurn()
	s.state = StateSending
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(reqCtx, req, text)
	return req.exchange, nil
}

func (s *Session) run(ctx context.Context, req *pendingRequest, text string) {
	defer s.wg.Done()
	defer req.cancel()

	start := time.Now()
	s.logger.Debug().Str("exchange", req.exchange.ID).Msg("request started")

	var reply string
	var err error
	var sb strings.Builder
	onChunk := func(chunk string) {
		sb.WriteString(chunk)
		s.update(req.id, sb.String())
	}
	switch t := s.transport.(type) {
	case HistoryTransport:
		reply, err = t.Reply(ctx, text, onChunk)
	case StreamingTransport:
		reply, err = t.SendStream(ctx, text, onChunk)
	default:
		reply, err = t.Send(ctx, text)
	}

	if err == nil && strings.TrimSpace(reply) == "" {
		err = apierrors.NewEmptyReplyError("")
	}

	s.logger.Debug().
		Str("exchange", req.exchange.ID).
		Dur("elapsed", time.Since(start)).
		Bool("ok", err == nil).
		Msg("request finished")

	s.settle(req, reply, err)
}

// owns reports whether req still holds the pending slot. Caller holds s.mu.
func (s *Session) owns(req uint64) bool {
	return !s.disposed && s.pending != nil && s.pending.id == req
}

func (s *Session) update(req uint64, text string) {
	s.mu.Lock()
	if !s.owns(req) {
		s.mu.Unlock()
		return
	}
	s.conv.UpdatePending(text)
	s.mu.Unlock()

	s.notify()
}

func (s *Session) settle(req *pendingRequest, reply string, err error) {
	s.mu.Lock()
	if !s.owns(req.id) {
		dropped := ErrSuperseded
		if s.disposed {
			dropped = ErrDisposed
		}
		s.mu.Unlock()

		s.logger.Debug().Str("exchange", req.exchange.ID).Err(dropped).Msg("late result ignored")
		req.exchange.finish("", dropped, StateIdle)
		return
	}

	s.pending = nil
	outcome := StateResolved
	if err != nil {
		outcome = StateFailed
		msg := FormatError(err)
		if s.detachedErrors {
			s.conv.AppendError(msg)
		} else {
			s.conv.FailPending(msg)
		}
		s.logger.Info().Str("exchange", req.exchange.ID).Err(err).Msg("exchange failed")
	} else {
		s.conv.ResolvePending(reply)
		if ht, ok := s.transport.(HistoryTransport); ok {
			ht.Record(req.text, reply)
		}
	}
	s.state = StateIdle
	s.mu.Unlock()

	s.notify()
	req.exchange.finish(reply, err, outcome)
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Dispose cancels any request in flight. Nothing mutates the conversation
// afterwards and further sends fail with ErrDisposed.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	s.state = StateIdle
	s.logger.Debug().Msg("chat session disposed")
}

// Wait blocks until every started exchange has settled
func (s *Session) Wait() {
	s.wg.Wait()
}

// State returns the controller state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Thinking reports whether a reply is awaited
func (s *Session) Thinking() bool {
	return s.State() == StateSending
}

// Turns returns a snapshot of the conversation
func (s *Session) Turns() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Turns()
}

// PendingIndex returns the index of the turn awaiting a reply, or -1
func (s *Session) PendingIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return noPending
	}
	return s.conv.PendingIndex()
}

// Len returns the number of turns
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Len()
}

// FormatError returns the text shown in an error turn. Errors from the
// transport taxonomy keep their message; anything else gets the fur ball.
func FormatError(err error) string {
	var (
		te *apierrors.TimeoutError
		se *apierrors.ServerError
		re *apierrors.EmptyReplyError
		ne *apierrors.NetworkError
		me *apierrors.EmptyMessageError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		return te.Error()
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &re):
		return re.Error()
	case errors.As(err, &ne):
		return ne.Error()
	case errors.As(err, &me):
		return me.Error()
	case errors.Is(err, apierrors.ErrMissingAPIKey):
		return apierrors.ErrMissingAPIKey.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apierrors.ErrTimeout.Error()
	default:
		return models.FurballMessage
	}
}
