package chain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Node is the execution environment adapter behind the protocol services:
// a monotonic block counter, a wall clock, and named custody accounts with
// native-value transfer. Current implementation is in-process while runtime
// wiring is finalized for an external sequencer.
type Node struct {
	mu       sync.RWMutex
	block    uint64
	wallNow  func() time.Time
	balances map[string]uint64
	logger   *slog.Logger
}

var ErrInsufficientFunds = errors.New("transfer exceeds account balance")

func NewNode(logger *slog.Logger) *Node {
	return &Node{
		block:    1,
		wallNow:  func() time.Time { return time.Now().UTC() },
		balances: make(map[string]uint64),
		logger:   logger,
	}
}

// BlockNumber is the monotonic logical clock all lockups and deadlines use.
func (n *Node) BlockNumber() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.block
}

// AdvanceBlocks moves the logical clock forward. Time never rewinds.
func (n *Node) AdvanceBlocks(delta uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.block += delta
}

// Now returns the externally supplied wall clock. It feeds only the daily
// spend day index and is not independently validated.
func (n *Node) Now() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.wallNow().UTC()
}

// SetWallClock overrides the wall clock source, primarily for tests.
func (n *Node) SetWallClock(now func() time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.wallNow = now
}

// Mint credits an account out of thin air. Bootstrap/test funding only.
func (n *Node) Mint(account string, amount uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances[account] += amount
}

func (n *Node) BalanceOf(account string) uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.balances[account]
}

// Transfer moves native value between accounts and reports failure instead
// of panicking. Value is conserved: the sum of all balances never changes.
func (n *Node) Transfer(_ context.Context, from string, to string, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.balances[from] < amount {
		if n.logger != nil {
			n.logger.Warn("transfer rejected",
				"event", "chain_transfer_rejected",
				"module", "internal/platform/chain",
				"layer", "platform",
				"from", from,
				"to", to,
				"amount", amount,
				"balance", n.balances[from],
			)
		}
		return ErrInsufficientFunds
	}
	n.balances[from] -= amount
	n.balances[to] += amount
	return nil
}
