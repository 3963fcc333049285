package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/windranger-io/ethers-contract-tools/subscriber"
)

// wsNode is a minimal JSON-RPC WebSocket endpoint: it acknowledges
// eth_subscribe and eth_unsubscribe and lets the test push notifications.
type wsNode struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	conns   chan *websocket.Conn
	methods chan string
}

func newWSNode(t *testing.T) *wsNode {
	t.Helper()
	n := &wsNode{
		conns:   make(chan *websocket.Conn, 4),
		methods: make(chan string, 16),
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *wsNode) url() string {
	return "ws" + strings.TrimPrefix(n.srv.URL, "http")
}

func (n *wsNode) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	n.conns <- conn

	subSeq := 0
	for {
		var req struct {
			ID     uint64        `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		var result interface{}
		switch req.Method {
		case "eth_subscribe":
			subSeq++
			result = fmt.Sprintf("0xsub%d", subSeq)
		case "eth_unsubscribe":
			result = true
		}
		_ = conn.WriteJSON(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
		n.methods <- req.Method
	}
}

// push sends an eth_subscription notification carrying the log.
func (n *wsNode) push(t *testing.T, conn *websocket.Conn, subID string, lg *types.Log) {
	t.Helper()
	raw, err := json.Marshal(lg)
	require.NoError(t, err)
	err = conn.WriteJSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "eth_subscription",
		"params": map[string]interface{}{
			"subscription": subID,
			"result":       json.RawMessage(raw),
		},
	})
	require.NoError(t, err)
}

func (n *wsNode) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-n.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no websocket connection established")
		return nil
	}
}

func awaitMethod(t *testing.T, n *wsNode, want string) {
	t.Helper()
	select {
	case m := <-n.methods:
		require.Equal(t, want, m)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func TestStreamDeliversLogs(t *testing.T) {
	node := newWSNode(t)

	s := New(node.url())
	defer s.Close()

	sink := subscriber.NewChannel(4)
	sub, err := s.Subscribe(context.Background(), Query{
		Addresses: []common.Address{common.HexToAddress("0x1000")},
	}, sink)
	require.NoError(t, err)
	awaitMethod(t, node, "eth_subscribe")

	conn := node.conn(t)
	want := &types.Log{
		Address: common.HexToAddress("0x1000"),
		Topics:  []common.Hash{common.HexToHash("0x01")},
		Data:    []byte{0x02},
	}
	node.push(t, conn, "0xsub1", want)

	select {
	case got := <-sink.Logs():
		require.Equal(t, want.Address, got.Address)
		require.Equal(t, want.Topics, got.Topics)
		require.Equal(t, want.Data, got.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("log was not delivered")
	}

	select {
	case err := <-sub.Err():
		t.Fatalf("unexpected subscription error: %v", err)
	default:
	}
}

func TestStreamIgnoresUnknownSubscription(t *testing.T) {
	node := newWSNode(t)

	s := New(node.url())
	defer s.Close()

	sink := subscriber.NewChannel(4)
	_, err := s.Subscribe(context.Background(), Query{}, sink)
	require.NoError(t, err)
	awaitMethod(t, node, "eth_subscribe")

	conn := node.conn(t)
	node.push(t, conn, "0xother", &types.Log{
		Address: common.HexToAddress("0x02"),
		Topics:  []common.Hash{common.HexToHash("0x01")},
	})

	select {
	case lg := <-sink.Logs():
		t.Fatalf("log for foreign subscription delivered: %+v", lg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStreamUnsubscribe(t *testing.T) {
	node := newWSNode(t)

	s := New(node.url())
	defer s.Close()

	sink := subscriber.NewChannel(4)
	sub, err := s.Subscribe(context.Background(), Query{}, sink)
	require.NoError(t, err)
	awaitMethod(t, node, "eth_subscribe")

	sub.Unsubscribe()
	awaitMethod(t, node, "eth_unsubscribe")

	conn := node.conn(t)
	node.push(t, conn, "0xsub1", &types.Log{
		Address: common.HexToAddress("0x02"),
		Topics:  []common.Hash{common.HexToHash("0x01")},
	})

	select {
	case lg := <-sink.Logs():
		t.Fatalf("log delivered after unsubscribe: %+v", lg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestQueryParams(t *testing.T) {
	t.Parallel()

	require.Empty(t, Query{}.params())

	q := Query{
		Addresses: []common.Address{common.HexToAddress("0x01")},
		Topics:    [][]common.Hash{{common.HexToHash("0x02")}},
	}
	p := q.params()
	require.Contains(t, p, "address")
	require.Contains(t, p, "topics")
}
