// Example: ordered — verify that a transaction emitted a specific sequence of
// events across two contracts.
//
// Usage:
//
//	ETH_RPC_URL=https://eth-mainnet.alchemyapi.io/v2/YOUR_KEY TX_HASH=0x... go run ./example/ordered
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	evtools "github.com/windranger-io/ethers-contract-tools"
	"github.com/windranger-io/ethers-contract-tools/filter"
)

func main() {
	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		log.Fatal("ETH_RPC_URL environment variable is required")
	}
	txHash := os.Getenv("TX_HASH")
	if txHash == "" {
		log.Fatal("TX_HASH environment variable is required")
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	receipt, err := client.TransactionReceipt(context.Background(), common.HexToHash(txHash))
	if err != nil {
		log.Fatal(err)
	}

	// 1. Bind events on each emitter involved in the transaction
	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	deposit, err := evtools.FromSignature(weth,
		"Deposit(address indexed dst, uint256 wad)")
	if err != nil {
		log.Fatal(err)
	}
	transfer, err := evtools.FromSignature(usdc,
		"Transfer(address indexed from, address indexed to, uint256 value)")
	if err != nil {
		log.Fatal(err)
	}

	// 2. One filter per expected event, in the order they must appear
	fDeposit, err := deposit.NewFilter(filter.None())
	if err != nil {
		log.Fatal(err)
	}
	fTransfer, err := transfer.NewFilter(filter.None())
	if err != nil {
		log.Fatal(err)
	}

	// 3. Match them as one ordered sequence across both emitters
	addrs, events, err := evtools.MatchOrderedEmitters(
		receipt.Logs,
		[]filter.Filter{fDeposit, fTransfer},
		false,
	)
	if err != nil {
		log.Fatal(err)
	}

	for i, decoded := range events {
		fmt.Printf("%d. %s emitted by %s: %s\n", i+1, decoded.Name(), addrs[i].Hex(), decoded)
	}
}
