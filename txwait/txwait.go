// Package txwait resolves a pending transaction to its receipt and verifies
// it completed successfully.
package txwait

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/windranger-io/ethers-contract-tools/retry"
)

// ReceiptSource looks up transaction receipts. *ethclient.Client satisfies
// it.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// CompletionError reports that a mined transaction did not complete with a
// success status.
type CompletionError struct {
	TxHash common.Hash
	Status uint64
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("txwait: transaction %s failed with status %d", e.TxHash.Hex(), e.Status)
}

// Option configures Wait.
type Option func(*config)

type config struct {
	schedule retry.Schedule
}

// WithSchedule overrides the receipt polling schedule.
func WithSchedule(s retry.Schedule) Option {
	return func(c *config) {
		c.schedule = s
	}
}

// Wait polls src until the transaction is mined, then verifies it succeeded.
// A mined transaction with a failure status yields a *CompletionError. The
// default schedule polls every 500ms for up to 120 attempts.
func Wait(ctx context.Context, src ReceiptSource, txHash common.Hash, opts ...Option) (*types.Receipt, error) {
	cfg := config{schedule: retry.Fixed(500*time.Millisecond, 120)}
	for _, opt := range opts {
		opt(&cfg)
	}

	var receipt *types.Receipt
	err := retry.Poll(ctx, cfg.schedule, func(ctx context.Context) (bool, error) {
		r, err := src.TransactionReceipt(ctx, txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return false, nil // not mined yet
			}
			return false, errors.Wrapf(err, "txwait: receipt lookup for %s", txHash.Hex())
		}
		receipt = r
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &CompletionError{TxHash: txHash, Status: receipt.Status}
	}
	return receipt, nil
}

// WaitTx is a convenience over Wait for a *types.Transaction.
func WaitTx(ctx context.Context, src ReceiptSource, tx *types.Transaction, opts ...Option) (*types.Receipt, error) {
	return Wait(ctx, src, tx.Hash(), opts...)
}
