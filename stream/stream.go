// Package stream provides a push source of event logs over a WebSocket
// JSON-RPC subscription, feeding subscriber implementations.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/windranger-io/ethers-contract-tools/retry"
	"github.com/windranger-io/ethers-contract-tools/subscriber"
)

// Query restricts a log subscription by emitter address and topic positions.
// A nil inner topic slice is a wildcard for that position.
type Query struct {
	Addresses []common.Address
	Topics    [][]common.Hash
}

func (q Query) params() map[string]interface{} {
	p := make(map[string]interface{})
	if len(q.Addresses) > 0 {
		p["address"] = q.Addresses
	}
	if len(q.Topics) > 0 {
		p["topics"] = q.Topics
	}
	return p
}

// Option configures a Stream.
type Option func(*Stream)

// WithLogger attaches a logger for connection lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithReconnect overrides the redial schedule applied after a broken
// connection.
func WithReconnect(schedule retry.Schedule) Option {
	return func(s *Stream) {
		s.reconnect = schedule
	}
}

// Stream multiplexes eth_subscribe("logs") subscriptions over a single
// WebSocket connection. The connection is established lazily on the first
// Subscribe and redialed on failure; active subscriptions are replayed after
// a successful redial.
type Stream struct {
	url       string
	logger    *zap.Logger
	reconnect retry.Schedule

	nextID atomic.Uint64

	mu        sync.Mutex // guards conn and connected
	conn      *websocket.Conn
	connected bool

	pendingMu sync.Mutex
	pending   map[uint64]chan rpcResponse

	subMu sync.Mutex
	subs  map[string]*Subscription

	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a Stream for the given WebSocket endpoint. No connection is
// made until the first Subscribe.
func New(url string, opts ...Option) *Stream {
	s := &Stream{
		url:       url,
		logger:    zap.NewNop(),
		reconnect: retry.Exponential(5),
		pending:   make(map[uint64]chan rpcResponse),
		subs:      make(map[string]*Subscription),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscription is a live log subscription delivering into a subscriber.
type Subscription struct {
	query Query
	sink  subscriber.Subscriber
	errs  chan error

	mu sync.Mutex
	id string

	stream *Stream
	once   sync.Once
}

// Err reports a terminal subscription failure (connection lost and not
// recovered). At most one error is delivered.
func (sub *Subscription) Err() <-chan error {
	return sub.errs
}

// Unsubscribe stops delivery and releases the server-side subscription.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.mu.Lock()
		id := sub.id
		sub.mu.Unlock()
		sub.stream.drop(id)
	})
}

// Subscribe opens a log subscription for the query and delivers every pushed
// log to sink.
func (s *Stream) Subscribe(ctx context.Context, q Query, sink subscriber.Subscriber) (*Subscription, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	id, err := s.subscribeCall(ctx, q)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		query:  q,
		sink:   sink,
		errs:   make(chan error, 1),
		id:     id,
		stream: s,
	}
	s.subMu.Lock()
	s.subs[id] = sub
	s.subMu.Unlock()

	s.logger.Debug("stream: subscribed", zap.String("subscription", id))
	return sub, nil
}

// Close terminates the connection and all subscriptions.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
	return nil
}

func (s *Stream) drop(id string) {
	s.subMu.Lock()
	delete(s.subs, id)
	s.subMu.Unlock()

	// Best effort; the server also drops subscriptions on disconnect.
	_, _ = s.call(context.Background(), "eth_unsubscribe", id)
}

func (s *Stream) ensureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return nil
	}
	return s.dialLocked(ctx)
}

func (s *Stream) dialLocked(ctx context.Context) error {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return errors.Wrapf(err, "stream: dial %s", s.url)
	}
	s.conn = conn
	s.connected = true
	go s.readLoop(conn)
	return nil
}

func (s *Stream) subscribeCall(ctx context.Context, q Query) (string, error) {
	raw, err := s.call(ctx, "eth_subscribe", "logs", q.params())
	if err != nil {
		return "", err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", errors.Wrap(err, "stream: subscription id")
	}
	return id, nil
}

func (s *Stream) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}

	id := s.nextID.Add(1)
	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}

	ch := make(chan rpcResponse, 1)
	s.pendingMu.Lock()
	s.pending[id] = ch
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return nil, errors.New("stream: not connected")
	}
	err := conn.WriteJSON(req)
	s.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "stream: write")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, errors.New("stream: closed")
	case resp := <-ch:
		if resp.Error != nil {
			return nil, errors.Errorf("stream: rpc error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	}
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
			}
			s.logger.Warn("stream: connection lost", zap.Error(err))
			s.redial()
			return
		}
		s.dispatch(data)
	}
}

func (s *Stream) dispatch(data []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Warn("stream: malformed message", zap.Error(err))
		return
	}

	if msg.Method == "eth_subscription" {
		s.deliver(msg.Params)
		return
	}

	s.pendingMu.Lock()
	ch, ok := s.pending[msg.ID]
	s.pendingMu.Unlock()
	if ok {
		ch <- rpcResponse{Result: msg.Result, Error: msg.Error}
	}
}

func (s *Stream) deliver(params json.RawMessage) {
	var note struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(params, &note); err != nil {
		s.logger.Warn("stream: malformed notification", zap.Error(err))
		return
	}

	s.subMu.Lock()
	sub, ok := s.subs[note.Subscription]
	s.subMu.Unlock()
	if !ok {
		return
	}

	var lg types.Log
	if err := json.Unmarshal(note.Result, &lg); err != nil {
		s.logger.Warn("stream: malformed log", zap.Error(err))
		return
	}
	sub.sink.Send(&lg)
}

// redial re-establishes the connection per the reconnect schedule and
// replays all active subscriptions. On exhaustion every subscription
// receives a terminal error.
func (s *Stream) redial() {
	s.mu.Lock()
	s.connected = false
	s.conn = nil
	s.mu.Unlock()

	err := retry.Poll(context.Background(), s.reconnect, func(ctx context.Context) (bool, error) {
		select {
		case <-s.closed:
			return true, nil
		default:
		}

		s.mu.Lock()
		dialErr := s.dialLocked(ctx)
		s.mu.Unlock()
		if dialErr != nil {
			s.logger.Warn("stream: redial failed", zap.Error(dialErr))
			return false, nil
		}
		return true, s.resubscribeAll(ctx)
	})
	if err != nil {
		s.failAll(errors.Wrap(err, "stream: reconnect"))
	}
}

func (s *Stream) resubscribeAll(ctx context.Context) error {
	s.subMu.Lock()
	old := s.subs
	s.subs = make(map[string]*Subscription, len(old))
	s.subMu.Unlock()

	for _, sub := range old {
		id, err := s.subscribeCall(ctx, sub.query)
		if err != nil {
			return err
		}
		sub.mu.Lock()
		sub.id = id
		sub.mu.Unlock()
		s.subMu.Lock()
		s.subs[id] = sub
		s.subMu.Unlock()
		s.logger.Info("stream: resubscribed", zap.String("subscription", id))
	}
	return nil
}

func (s *Stream) failAll(err error) {
	s.subMu.Lock()
	subs := s.subs
	s.subs = make(map[string]*Subscription)
	s.subMu.Unlock()

	for _, sub := range subs {
		select {
		case sub.errs <- err:
		default:
		}
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage
	Error  *rpcError
}

type rpcMessage struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
