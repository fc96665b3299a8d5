package platform

import (
	"fmt"
	"sync"
	"time"
)

// KernelTransaction is a KTM transaction. Operations scoped to it become
// visible to other readers only after Commit.
type KernelTransaction struct {
	description string
	handle      uintptr
	mu          sync.Mutex
	closed      bool
}

// Handle returns the raw transaction handle passed to the *Transacted calls.
func (t *KernelTransaction) Handle() uintptr {
	if t == nil {
		return 0
	}
	return t.handle
}

func (t *KernelTransaction) String() string {
	return fmt.Sprintf("transaction(%q)", t.description)
}

// Commit makes every operation performed under t durable.
func (t *KernelTransaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransactionClosed
	}
	return commitTransaction(t.handle)
}

// Rollback discards every operation performed under t.
func (t *KernelTransaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransactionClosed
	}
	return rollbackTransaction(t.handle)
}

// Close releases the handle. An uncommitted transaction is rolled back by
// the kernel when its last handle closes.
func (t *KernelTransaction) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return closeTransaction(t.handle)
}

// NewKernelTransaction creates a transaction. A zero timeout never expires.
func NewKernelTransaction(description string, timeout time.Duration) (*KernelTransaction, error) {
	h, err := createTransaction(description, timeout)
	if err != nil {
		return nil, err
	}
	return &KernelTransaction{handle: h, description: description}, nil
}
