package mocks

import (
	"context"

	"github.com/phrazzld/tasker-api/internal/store"
)

// TxRunner implements store.TxRunner by calling fn directly with a nil
// transaction. It pairs with the Memory* stores, whose WithTx ignores tx.
type TxRunner struct {
	// BeginError, when set, is returned without calling fn.
	BeginError error
}

var _ store.TxRunner = TxRunner{}

// RunInTx implements store.TxRunner.
func (r TxRunner) RunInTx(ctx context.Context, fn store.TxFn) error {
	if r.BeginError != nil {
		return r.BeginError
	}
	return fn(ctx, nil)
}
