package main

import (
	"encoding/json"
	"os"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/advisory/github"
)

// TokenEnv names the environment variable consulted for the GitHub token.
const TokenEnv = `GITHUB_TOKEN`

// config is the layout of the file passed with the "-config" flag.
type config struct {
	// GitHub is passed to the GitHub client's Configure method.
	GitHub json.RawMessage `json:"github,omitempty"`
	Cache  struct {
		Path string           `json:"path,omitempty"`
		TTL  sbomkit.Duration `json:"ttl,omitempty"`
	} `json:"cache"`
	BatchSize         int              `json:"batch_size,omitempty"`
	Timeout           sbomkit.Duration `json:"timeout,omitempty"`
	RequestsPerSecond float64          `json:"requests_per_second,omitempty"`
}

// githubConfig returns a ConfigUnmarshaler populating the GitHub client
// configuration from the file, with the token overridden by the environment.
func (c *config) githubConfig() github.ConfigUnmarshaler {
	return func(v interface{}) error {
		if len(c.GitHub) != 0 {
			if err := json.Unmarshal(c.GitHub, v); err != nil {
				return err
			}
		}
		if tok, ok := os.LookupEnv(TokenEnv); ok {
			v.(*github.Config).Token = tok
		}
		return nil
	}
}
