package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Alias tables are easier to manage in YAML than env vars.
type YAMLConfig struct {
	// Canonical field -> extra payload keys, e.g. caller_phone: [mobile]
	Aliases map[string][]string `yaml:"aliases"`
	// Tool intent -> extra tool names, e.g. collect_caller_information: [save_lead]
	ToolAliases map[string][]string `yaml:"tool_aliases"`
	Notify      NotifyConfig        `yaml:"notify"`
}

// NotifyConfig adds hot-lead notification recipients.
type NotifyConfig struct {
	HotLeads []string `yaml:"hot_leads"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return loadYAMLFile(getEnv("CONFIG_FILE", "config.yaml"))
}

func loadYAMLFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FieldAliases returns the extra payload aliases, or nil.
func (c *YAMLConfig) FieldAliases() map[string][]string {
	if c == nil {
		return nil
	}
	return c.Aliases
}

// ToolNames returns the extra tool names per intent, or nil.
func (c *YAMLConfig) ToolNames() map[string][]string {
	if c == nil {
		return nil
	}
	return c.ToolAliases
}

// HotLeadRecipients merges recipients from the file with the given list,
// dropping duplicates.
func (c *YAMLConfig) HotLeadRecipients(base []string) []string {
	seen := make(map[string]bool, len(base))
	var out []string
	add := func(list []string) {
		for _, addr := range list {
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, addr)
		}
	}
	add(base)
	if c != nil {
		add(c.Notify.HotLeads)
	}
	return out
}
