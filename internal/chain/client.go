package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// ErrReverted is returned when a mined transaction has status 0.
var ErrReverted = errors.New("transaction reverted")

// DefaultPollInterval is how often WaitForReceipt asks for a receipt.
const DefaultPollInterval = 2 * time.Second

// EVMClient is an ethclient connection with the few helpers the commands need
// on top of the standard JSON-RPC surface.
type EVMClient struct {
	*ethclient.Client
	url string
	log logrus.FieldLogger
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*EVMClient, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &EVMClient{Client: c, url: url, log: logging.Discard()}, nil
}

// WithLogger attaches a logger for receipt polling diagnostics.
func (c *EVMClient) WithLogger(l logrus.FieldLogger) *EVMClient {
	if l != nil {
		c.log = l
	}
	return c
}

// URL returns the endpoint the client is connected to.
func (c *EVMClient) URL() string { return c.url }

// Ping measures round-trip latency with eth_blockNumber.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	return latency, blockNum, err
}

// ReceiptFetcher is the subset of ethclient WaitForReceipt relies on.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// WaitForReceipt polls every interval until the transaction is mined.
// It has no deadline of its own: an unmined transaction stays pending until
// ctx is cancelled. Lookup errors are treated as "not yet mined".
// A receipt with status 0 is returned together with ErrReverted.
func WaitForReceipt(ctx context.Context, rf ReceiptFetcher, hash common.Hash, interval time.Duration, log logrus.FieldLogger) (*types.Receipt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log = logging.OrDiscard(log)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := rf.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case err != nil && ctx.Err() == nil:
			log.WithError(err).WithField("tx", hash.Hex()).Debug("receipt not available yet")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForReceipt waits on this client's endpoint.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	return WaitForReceipt(ctx, c.Client, hash, interval, c.log)
}
