package v1

import "github.com/tinoosan/bank/internal/storage/postgres"

// Compile-time assertion for the optional readiness hook. The memory store
// has none and is always ready.
var _ ReadyChecker = (*postgres.Store)(nil)
