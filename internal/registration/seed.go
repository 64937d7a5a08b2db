package registration

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSeed reads a JSON array of registrations and returns a memory oracle
// holding them. Deployments without a client for the external registration
// API point the service at a seed file instead; an oracle with no source at
// all would fail every lookup.
func LoadSeed(path string) (*MemoryOracle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registration seed: %w", err)
	}

	var regs []*Registration
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("parse registration seed %s: %w", path, err)
	}

	oracle := NewMemoryOracle()
	for _, r := range regs {
		oracle.AddRegistration(r)
	}
	return oracle, nil
}
