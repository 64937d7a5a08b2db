package config

import "os"

const EnvRegistrationsSeedFile = "RECLAIM_REGISTRATIONS_SEED_FILE"

// RegistrationsConfig locates the registration oracle source. SeedFile points
// at a JSON file of registrations loaded into the in-memory oracle at
// startup. The run command refuses to start when it is empty, since an
// unseeded oracle fails every registration lookup.
type RegistrationsConfig struct {
	SeedFile string `toml:"seed_file"`
}

// Finalize applies environment variable overrides.
func (c *RegistrationsConfig) Finalize() error {
	c.loadEnv()
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *RegistrationsConfig) Merge(overlay *RegistrationsConfig) {
	if overlay.SeedFile != "" {
		c.SeedFile = overlay.SeedFile
	}
}

func (c *RegistrationsConfig) loadEnv() {
	if v := os.Getenv(EnvRegistrationsSeedFile); v != "" {
		c.SeedFile = v
	}
}
