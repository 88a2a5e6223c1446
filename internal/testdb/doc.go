// Package testdb provides utilities for PostgreSQL integration tests.
//
// Tests obtain a migrated connection with Open, which skips the test when no
// database is configured, and isolate their writes with WithTx:
//
//	func TestTaskStore(t *testing.T) {
//	    db := testdb.Open(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The connection string is read from DATABASE_URL, falling back to
// TASKER_TEST_DB_URL.
package testdb
