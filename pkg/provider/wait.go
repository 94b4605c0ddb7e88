package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gnolang/tm2-go-client/pkg/log"
	"github.com/gnolang/tm2-go-client/pkg/tx"
)

const (
	DefaultWaitTimeout      = 15 * time.Second
	DefaultWaitPollInterval = time.Second
)

// BlockSource is what WaitForTransaction needs from a provider.
type BlockSource interface {
	GetBlockNumber(ctx context.Context) (int64, error)
	GetBlock(ctx context.Context, height int64) (BlockInfo, error)
}

type waitConfig struct {
	fromHeight   int64
	timeout      time.Duration
	pollInterval time.Duration
}

// WaitOption customizes WaitForTransaction.
type WaitOption func(*waitConfig)

// WithFromHeight starts the scan at height instead of the latest block.
func WithFromHeight(height int64) WaitOption {
	return func(c *waitConfig) { c.fromHeight = height }
}

// WithTimeout bounds the whole wait. Defaults to DefaultWaitTimeout.
func WithTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) { c.timeout = d }
}

// WithPollInterval sets the time between two polls. Defaults to DefaultWaitPollInterval.
func WithPollInterval(d time.Duration) WaitOption {
	return func(c *waitConfig) { c.pollInterval = d }
}

// WaitForTransaction scans blocks until one contains a transaction whose
// base64 SHA-256 equals hash, and returns it decoded.
//
// The scan starts at the starting height and every poll covers the blocks
// from the cursor up to the latest one; the cursor only moves past a block
// once it was scanned. The wait ends with ErrTransactionFetchTimeout when the
// timeout elapses and with ErrTransactionFetch as soon as a poll fails.
func WaitForTransaction(ctx context.Context, src BlockSource, hash string, opts ...WaitOption) (*tx.Tx, error) {
	cfg := waitConfig{
		timeout:      DefaultWaitTimeout,
		pollInterval: DefaultWaitPollInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lg := log.FromContext(ctx).WithName("tx-wait").WithKV("hash", hash)

	waitCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	current := cfg.fromHeight
	if current <= 0 {
		latest, err := src.GetBlockNumber(waitCtx)
		if err != nil {
			return nil, waitError(ctx, waitCtx, err)
		}
		current = latest
	}

	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return nil, waitError(ctx, waitCtx, waitCtx.Err())
		case <-ticker.C:
		}

		latest, err := src.GetBlockNumber(waitCtx)
		if err != nil {
			return nil, waitError(ctx, waitCtx, err)
		}
		if latest < current {
			continue
		}

		for height := current; height <= latest; height++ {
			block, err := src.GetBlock(waitCtx, height)
			if err != nil {
				return nil, waitError(ctx, waitCtx, err)
			}

			found, err := findTransaction(block.Block.Data.Txs, hash, lg)
			if err != nil {
				return nil, err
			}
			if found != nil {
				lg.Debug("transaction found", "height", height)
				return found, nil
			}
			current = height + 1
		}
	}
}

func findTransaction(txs []string, hash string, lg log.Logger) (*tx.Tx, error) {
	for _, encoded := range txs {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			lg.Warn("skipping undecodable transaction", "error", err)
			continue
		}
		if tx.HashBase64(raw) != hash {
			continue
		}

		decoded, err := tx.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransactionDecode, err)
		}
		return decoded, nil
	}
	return nil, nil
}

// waitError distinguishes the wait's own timeout from the caller giving up
// and from a failed poll.
func waitError(parent, waitCtx context.Context, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return parentErr
	}
	if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return ErrTransactionFetchTimeout
	}
	return fmt.Errorf("%w: %w", ErrTransactionFetch, err)
}
