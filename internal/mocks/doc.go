// Package mocks provides centralized test doubles for the store, auth and
// mail interfaces.
//
// The Memory* stores are working in-memory implementations that keep the
// ownership and token-set semantics of the Postgres stores, so services and
// handlers can be exercised end to end without a database. Each store also
// exposes error fields for injecting failures. TestifyMock* types are
// expectation-based mocks built on testify/mock.
//
// Usage:
//
//	users := mocks.NewMemoryUserStore()
//	tasks := mocks.NewMemoryTaskStore()
//	svc := service.NewTaskService(tasks, mocks.TxRunner{}, logger)
package mocks
