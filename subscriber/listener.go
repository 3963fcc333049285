package subscriber

import (
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/windranger-io/ethers-contract-tools/event"
)

// AcceptFunc gates pushed logs before decoding: it reports whether the log
// carries the listener's signature tag and emitter address.
type AcceptFunc func(*types.Log) bool

// DecodeFunc decodes and verifies an accepted log. A returned error is a
// programming-error-level failure, equivalent to a verification failure on
// the synchronous paths.
type DecodeFunc func(*types.Log) (*event.Decoded, error)

// Listener accumulates decoded events from a push source. Delivery order is
// not controlled by this package: pushed logs may arrive in any order
// relative to when the listener was created, and the listener accumulates
// indefinitely until closed.
//
// A decode or verification failure latches: the listener stops accumulating
// and reports the first error from Err.
type Listener struct {
	accept AcceptFunc
	decode DecodeFunc
	logger *zap.Logger

	mu     sync.Mutex
	events []*event.Decoded
	err    error
	closed bool
}

// NewListener creates a listener over the given gate and decode capability.
// A nil logger disables logging.
func NewListener(accept AcceptFunc, decode DecodeFunc, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		accept: accept,
		decode: decode,
		logger: logger,
	}
}

// Send implements Subscriber. Logs failing the accept gate are ignored;
// accepted logs are decoded, verified and accumulated.
func (l *Listener) Send(lg *types.Log) {
	if !l.accept(lg) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.err != nil {
		return
	}

	decoded, err := l.decode(lg)
	if err != nil {
		l.err = err
		l.logger.Error("listener: decode pushed log",
			zap.String("address", lg.Address.Hex()),
			zap.Uint64("block", lg.BlockNumber),
			zap.Error(err),
		)
		return
	}

	l.events = append(l.events, decoded)
	l.logger.Debug("listener: accumulated event",
		zap.String("event", decoded.Name()),
		zap.String("address", decoded.Address().Hex()),
	)
}

// Events returns a copy of the events accumulated so far.
func (l *Listener) Events() []*event.Decoded {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*event.Decoded, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of accumulated events.
func (l *Listener) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Err returns the first decode or verification failure, if any.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close implements Subscriber. Further pushes are ignored.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
