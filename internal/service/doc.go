// Package service contains the application operations behind the HTTP API.
//
// UserService covers the account lifecycle: sign-up, login, logout of one or
// all sessions, profile updates, deletion and avatars. TaskService covers
// task CRUD, always scoped to the requesting owner.
//
// Services depend on the store interfaces and a store.TxRunner, never on a
// concrete database. Multi-statement operations (sign-up, profile update,
// account deletion) run in a single transaction. Partial updates arrive as a
// Patch and are checked against a per-entity allow-list before anything is
// read or written.
//
// Errors wrap the store and domain sentinels so the API layer can map them
// with errors.Is.
package service
