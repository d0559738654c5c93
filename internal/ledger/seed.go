package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadSeed decodes and validates a JSON seed document.
//
//	{"accounts": [{"id": 1234567890, "balance_minor": 3448}],
//	 "usernames": ["user1", "user2"]}
//
// usernames may also be an object mapping each username to a pre-assigned account id.
func ReadSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if s.Usernames == nil {
		s.Usernames = Registry{}
	}
	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// LoadSeedFile reads a seed from path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, err
	}
	defer f.Close()
	return ReadSeed(f)
}

// DevSeed is the demo data used when no seed file is configured.
func DevSeed() Seed {
	return Seed{
		Accounts: []SeedAccount{
			{ID: 1234567890, BalanceMinor: 3448},
			{ID: 1234567891, BalanceMinor: 2424},
		},
		Usernames: Usernames("user1", "user2"),
	}
}
