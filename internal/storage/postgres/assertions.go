package postgres

import "github.com/tinoosan/bank/internal/service/account"

var (
	_ account.Repo   = (*Store)(nil)
	_ account.Writer = (*Store)(nil)
	_ account.Seeder = (*Store)(nil)
)
