package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

// networksFile mirrors the on-disk yaml layout.
type networksFile struct {
	Native   string                          `yaml:"native"`
	Networks map[string]model.NetworkProfile `yaml:"networks"`
}

// NetworkStore is the read-only lookup of per-token network parameters.
// Profiles are loaded once and immutable for the process lifetime.
type NetworkStore struct {
	native   string
	profiles map[string]model.NetworkProfile
}

// LoadNetworks reads and validates the token → network profile mapping.
func LoadNetworks(path string) (*NetworkStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}
	if len(file.Networks) == 0 {
		return nil, fmt.Errorf("%w: no networks configured", model.ErrBadNetworkConfig)
	}
	if file.Native == "" {
		return nil, fmt.Errorf("%w: native token not set", model.ErrBadNetworkConfig)
	}

	profiles := make(map[string]model.NetworkProfile, len(file.Networks))
	for token, profile := range file.Networks {
		token = strings.ToLower(token)
		profile.Token = token
		if err := validateProfile(profile); err != nil {
			return nil, err
		}
		profiles[token] = profile
	}

	native := strings.ToLower(file.Native)
	if _, ok := profiles[native]; !ok {
		return nil, fmt.Errorf("%w: native token %q has no network profile", model.ErrBadNetworkConfig, native)
	}

	return &NetworkStore{native: native, profiles: profiles}, nil
}

func validateProfile(p model.NetworkProfile) error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: token %q has an empty node list", model.ErrBadNetworkConfig, p.Token)
	}
	for _, n := range p.Nodes {
		if n.Host == "" || n.Port <= 0 || n.Port > 65535 {
			return fmt.Errorf("%w: token %q has an invalid node %q:%d", model.ErrBadNetworkConfig, p.Token, n.Host, n.Port)
		}
	}
	if p.Stickers != nil && (p.Stickers.Price == "" || p.Stickers.Address == "") {
		return fmt.Errorf("%w: token %q has an incomplete stickers offer", model.ErrBadNetworkConfig, p.Token)
	}
	return nil
}

// Profile looks up a token's network profile, case-insensitively.
func (s *NetworkStore) Profile(token string) (model.NetworkProfile, error) {
	p, ok := s.profiles[strings.ToLower(token)]
	if !ok {
		return model.NetworkProfile{}, fmt.Errorf("%w: %q", model.ErrUnknownToken, token)
	}
	return p, nil
}

// NativeToken returns the chain's native token symbol (lowercase).
func (s *NetworkStore) NativeToken() string {
	return s.native
}

// Tokens returns every configured token symbol (lowercase).
func (s *NetworkStore) Tokens() []string {
	tokens := make([]string, 0, len(s.profiles))
	for token := range s.profiles {
		tokens = append(tokens, token)
	}
	return tokens
}
