package inventory

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock ledger
// repositories. Every ledger mutation and its matching transaction-log
// append run inside one Execute call, so they commit or roll back
// together; row locks taken by ForUpdate reads are held until that
// boundary.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock ledger
// repositories scoped to the current transaction.
type TransactionalRepositories interface {
	// Units returns the stock unit repository bound to the transaction
	Units() inventory.StockUnitRepository
	// Transactions returns the transaction-log repository bound to the transaction
	Transactions() inventory.StockTransactionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests where repositories are already transactional fakes.
type NoOpTransactionScope struct {
	units        inventory.StockUnitRepository
	transactions inventory.StockTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	units inventory.StockUnitRepository,
	transactions inventory.StockTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{units: units, transactions: transactions}
}

// Execute runs the function without transaction semantics
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Units returns the stock unit repository
func (s *NoOpTransactionScope) Units() inventory.StockUnitRepository {
	return s.units
}

// Transactions returns the transaction-log repository
func (s *NoOpTransactionScope) Transactions() inventory.StockTransactionRepository {
	return s.transactions
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
