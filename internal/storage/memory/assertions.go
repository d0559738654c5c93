package memory

import "github.com/tinoosan/bank/internal/service/account"

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ account.Repo   = (*Store)(nil)
	_ account.Writer = (*Store)(nil)
	_ account.Seeder = (*Store)(nil)
)
