// Example: basic — wait for a transaction and assert it emitted exactly one
// Transfer with the expected values.
//
// Usage:
//
//	ETH_RPC_URL=https://eth-mainnet.alchemyapi.io/v2/YOUR_KEY TX_HASH=0x... go run ./example/basic
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	evtools "github.com/windranger-io/ethers-contract-tools"
	"github.com/windranger-io/ethers-contract-tools/filter"
	"github.com/windranger-io/ethers-contract-tools/retry"
	"github.com/windranger-io/ethers-contract-tools/txwait"
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

	// 1. Bind the Transfer event of the USDT contract
	usdt := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	transfer, err := evtools.FromSignature(usdt,
		"Transfer(address indexed from, address indexed to, uint256 value)")
	if err != nil {
		log.Fatal(err)
	}

	// 2. Wait for the transaction receipt and decode every Transfer in it
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	receipt, all, err := transfer.WaitAll(ctx, client, common.HexToHash(txHash),
		txwait.WithSchedule(retry.Fixed(2*time.Second, 60)),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("transaction mined in block %d with %d Transfer event(s)\n",
		receipt.BlockNumber, len(all))

	// 3. Assert the receipt carries exactly one Transfer of 1 USDT (6 decimals)
	decoded, err := transfer.ExpectOne(receipt, filter.Named(map[string]interface{}{
		"value": big.NewInt(1_000_000),
	}))
	if err != nil {
		log.Fatal(err)
	}

	from, _ := decoded.ByName("from")
	to, _ := decoded.ByName("to")
	value, _ := decoded.ByName("value")
	fmt.Printf("Transfer from=%v to=%v value=%v\n", from, to, value)
}
