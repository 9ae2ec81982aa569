// Copyright 2024-2026 Aiku AI

package connector

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/aiku/amsbridge/pkg/translator"
)

func TestConfigUnmarshalYAML(t *testing.T) {
	t.Parallel()
	input := `
session:
  agent_id: agent-1
  agent_old_id: legacy-7
  account: acct-9
  extra:
    skill: billing
admin_api_addr: 127.0.0.1:9000
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		t.Fatalf("UnmarshalYAML: %v", err)
	}
	if cfg.Session.AgentID != "agent-1" {
		t.Errorf("AgentID: got %q, want %q", cfg.Session.AgentID, "agent-1")
	}
	if cfg.Session.AgentOldID != "legacy-7" {
		t.Errorf("AgentOldID: got %q, want %q", cfg.Session.AgentOldID, "legacy-7")
	}
	if cfg.Session.Account != "acct-9" {
		t.Errorf("Account: got %q, want %q", cfg.Session.Account, "acct-9")
	}
	if cfg.Session.Extra["skill"] != "billing" {
		t.Errorf("Extra: got %v", cfg.Session.Extra)
	}
	if cfg.AdminAPIAddr != "127.0.0.1:9000" {
		t.Errorf("AdminAPIAddr: got %q", cfg.AdminAPIAddr)
	}
}

func TestExampleConfigParses(t *testing.T) {
	t.Parallel()
	var cfg Config
	if err := yaml.Unmarshal([]byte(ExampleConfig), &cfg); err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.Session.AgentOldID != "" {
		t.Errorf("example config should not ship an agent_old_id, got %q", cfg.Session.AgentOldID)
	}
	if len(cfg.Logging.Writers) == 0 {
		t.Error("example config should configure a log writer")
	}
}

func TestConfigPostProcessDefaults(t *testing.T) {
	t.Setenv("AMSBRIDGE_API_ADDR", "")
	cfg := &Config{}
	if err := cfg.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	if cfg.AdminAPIAddr != defaultAdminAPIAddr {
		t.Errorf("AdminAPIAddr: got %q, want %q", cfg.AdminAPIAddr, defaultAdminAPIAddr)
	}
}

func TestConfigPostProcessEnvAddr(t *testing.T) {
	t.Setenv("AMSBRIDGE_API_ADDR", ":4000")
	cfg := &Config{}
	if err := cfg.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	if cfg.AdminAPIAddr != ":4000" {
		t.Errorf("AdminAPIAddr: got %q, want %q", cfg.AdminAPIAddr, ":4000")
	}

	cfg = &Config{AdminAPIAddr: ":5000"}
	if err := cfg.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	if cfg.AdminAPIAddr != ":5000" {
		t.Errorf("explicit AdminAPIAddr should win, got %q", cfg.AdminAPIAddr)
	}
}

func TestConfigPostProcessRejectsEmptyExtraName(t *testing.T) {
	t.Parallel()
	cfg := &Config{AdminAPIAddr: ":1", Session: SessionConfig{Extra: map[string]string{"": "x"}}}
	if err := cfg.PostProcess(); err == nil {
		t.Error("PostProcess should reject an empty parameter name")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AMSBRIDGE_API_ADDR", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	input := `
session:
  agent_id: agent-1
  agent_old_id: legacy-7
  account: acct-9
`
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Session.AgentOldID != "legacy-7" {
		t.Errorf("AgentOldID: got %q", cfg.Session.AgentOldID)
	}
	if cfg.AdminAPIAddr != defaultAdminAPIAddr {
		t.Errorf("AdminAPIAddr: got %q, want default", cfg.AdminAPIAddr)
	}
	if len(cfg.Logging.Writers) == 0 {
		t.Error("logging should be filled in from the example config")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestResolveParams(t *testing.T) {
	t.Setenv(paramEnvPrefix+translator.ParamAccount, "acct-env")
	t.Setenv(paramEnvPrefix+"region", "eu")
	t.Setenv(paramEnvPrefix+translator.ParamAgentID, "")

	cfg := &Config{Session: SessionConfig{
		AgentID:    "agent-1",
		AgentOldID: "",
		Account:    "acct-9",
		Extra: map[string]string{
			translator.ParamAgentOldID: "legacy-extra",
			"skill":                    "billing",
			"blank":                    "",
		},
	}}
	params := cfg.ResolveParams()

	want := map[string]string{
		translator.ParamAgentOldID: "legacy-extra",
		translator.ParamAccount:    "acct-env",
		"skill":                    "billing",
		"region":                   "eu",
	}
	if len(params) != len(want) {
		t.Errorf("params: got %v, want %v", params, want)
	}
	for name, value := range want {
		if params[name] != value {
			t.Errorf("%s: got %q, want %q", name, params[name], value)
		}
	}
	if _, ok := params[translator.ParamAgentID]; ok {
		t.Error("an empty env override should unset agentId")
	}
}
