// Copyright 2024-2026 Aiku AI

package connector

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"strings"

	up "go.mau.fi/util/configupgrade"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"

	"github.com/aiku/amsbridge/pkg/translator"
)

//go:embed example-config.yaml
var ExampleConfig string

const (
	defaultAdminAPIAddr = ":29330"
	paramEnvPrefix      = "AMSBRIDGE_PARAM_"
)

// SessionConfig holds the substitution parameters for one agent session.
type SessionConfig struct {
	AgentID    string `yaml:"agent_id"`
	AgentOldID string `yaml:"agent_old_id"`
	Account    string `yaml:"account"`
	// Extra parameters are handed to the translator as-is. Keys use the
	// translator's parameter names, so extra.agentOldId is equivalent to
	// agent_old_id.
	Extra map[string]string `yaml:"extra"`
}

// Config holds the bridge configuration.
type Config struct {
	Session SessionConfig `yaml:"session"`
	// AdminAPIAddr is the listen address for the admin HTTP API. Defaults to
	// ":29330".
	AdminAPIAddr string            `yaml:"admin_api_addr"`
	Logging      zeroconfig.Config `yaml:"logging"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// PostProcess fills in defaults that depend on the environment.
func (c *Config) PostProcess() error {
	if c.AdminAPIAddr == "" {
		c.AdminAPIAddr = os.Getenv("AMSBRIDGE_API_ADDR")
	}
	if c.AdminAPIAddr == "" {
		c.AdminAPIAddr = defaultAdminAPIAddr
	}
	for name := range c.Session.Extra {
		if name == "" {
			return fmt.Errorf("session.extra contains an empty parameter name")
		}
	}
	return nil
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Str, "session", "agent_id")
	helper.Copy(up.Str, "session", "agent_old_id")
	helper.Copy(up.Str, "session", "account")
	helper.Copy(up.Map, "session", "extra")
	helper.Copy(up.Str, "admin_api_addr")
	helper.Copy(up.Map, "logging")
}

// GetConfig returns the example config, the value to decode into and the
// upgrader that merges a user config into the example.
func (c *Config) GetConfig() (example string, data any, upgrader *up.StructUpgrader) {
	return ExampleConfig, c, &up.StructUpgrader{
		SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
		Blocks: [][]string{
			{"admin_api_addr"},
			{"logging"},
		},
		Base: ExampleConfig,
	}
}

// LoadConfig reads the config at path, upgrades it against the example
// config and decodes the result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	_, data, upgrader := cfg.GetConfig()
	upgraded, _, err := up.Do(path, false, upgrader)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(upgraded, data); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err = cfg.PostProcess(); err != nil {
		return nil, fmt.Errorf("failed to post-process config: %w", err)
	}
	return cfg, nil
}

// ResolveParams builds the translator parameters from the config and the
// AMSBRIDGE_PARAM_* environment. Empty values are left out so that a rule
// needing them fails instead of substituting an empty string.
func (c *Config) ResolveParams() map[string]string {
	params := make(map[string]string, len(c.Session.Extra)+3)
	maps.Copy(params, c.Session.Extra)
	for name, value := range map[string]string{
		translator.ParamAgentID:    c.Session.AgentID,
		translator.ParamAgentOldID: c.Session.AgentOldID,
		translator.ParamAccount:    c.Session.Account,
	} {
		if value != "" {
			params[name] = value
		}
	}

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, paramEnvPrefix) {
			continue
		}
		if name := key[len(paramEnvPrefix):]; name != "" {
			params[name] = value
		}
	}
	return dropEmpty(params)
}

func dropEmpty(params map[string]string) map[string]string {
	for name, value := range params {
		if value == "" {
			delete(params, name)
		}
	}
	return params
}
