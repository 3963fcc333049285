// Example: listener — accumulate live Transfer events over a WebSocket
// subscription.
//
// Usage:
//
//	ETH_WS_URL=wss://eth-mainnet.alchemyapi.io/v2/YOUR_KEY go run ./example/listener
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	evtools "github.com/windranger-io/ethers-contract-tools"
	"github.com/windranger-io/ethers-contract-tools/stream"
)

func main() {
	wsURL := os.Getenv("ETH_WS_URL")
	if wsURL == "" {
		log.Fatal("ETH_WS_URL environment variable is required")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// 1. Bind the Transfer event of the USDT contract
	usdt := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	transfer, err := evtools.FromSignature(usdt,
		"Transfer(address indexed from, address indexed to, uint256 value)",
		evtools.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. A Listener decodes and accumulates every matching pushed log
	listener := transfer.NewListener()

	// 3. Subscribe over WebSocket, delivering straight into the listener
	s := stream.New(wsURL, stream.WithLogger(logger))
	defer s.Close()

	sub, err := s.Subscribe(context.Background(), stream.Query{
		Addresses: []common.Address{usdt},
		Topics:    [][]common.Hash{{transfer.Signature().ID()}},
	}, listener)
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Unsubscribe()

	fmt.Println("Listening for USDT transfers... Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-sub.Err():
		log.Fatal(err)
	case <-sig:
	}

	// 4. Drain what we accumulated
	if err := listener.Err(); err != nil {
		log.Fatal(err)
	}
	for i, decoded := range listener.Events() {
		fmt.Printf("%d. %s\n", i+1, decoded)
	}
}
