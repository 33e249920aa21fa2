package reviewer

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Profile describes the party the reviewer protects. It is injected
// into the system prompt when configured.
type Profile struct {
	ClientName    string   `yaml:"client_name"`
	StandardTerms []string `yaml:"standard_terms"`
	Instructions  string   `yaml:"instructions"`
}

// LoadProfile reads a review profile from a YAML file
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", path))
	}

	var profile Profile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profile file", goerr.V("path", path))
	}

	if profile.ClientName == "" {
		return nil, goerr.New("profile client_name is required", goerr.V("path", path))
	}

	return &profile, nil
}
