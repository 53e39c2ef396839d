package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/askline/askline/internal/provider"
)

// Profile is one named backend a user can switch to without touching the
// environment.
type Profile struct {
	Name         string `yaml:"name"`
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	SystemPrompt string `yaml:"system_prompt"`
}

type Config struct {
	Profiles map[string]Profile
}

// LoadProfiles reads a YAML file of the shape:
//
//	profiles:
//	  - name: local
//	    endpoint: http://localhost:11434/api/generate
//	    model: llama3.2
func LoadProfiles(path string) (*Config, error) {
	cfg := &Config{
		Profiles: make(map[string]Profile),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var raw struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, p := range raw.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("parsing %s: profile without name", path)
		}
		cfg.Profiles[p.Name] = p
	}
	return cfg, nil
}

// Resolve combines env defaults with an optional named profile into the
// provider config used for actual requests. The chat-style key falls back
// to GEMINI_API_KEY when nothing explicit was configured.
func Resolve(env *EnvVars, profileName string) (provider.Config, error) {
	out := provider.Config{
		Endpoint:     env.Endpoint,
		Model:        env.Model,
		APIKey:       env.APIKey,
		SystemPrompt: env.SystemPrompt,
	}

	if profileName != "" {
		profiles, err := LoadProfiles(env.ProfilesFile)
		if err != nil {
			return provider.Config{}, err
		}
		p, ok := profiles.Profiles[profileName]
		if !ok {
			return provider.Config{}, fmt.Errorf("unknown profile %q in %s", profileName, env.ProfilesFile)
		}
		if p.Endpoint != "" {
			out.Endpoint = p.Endpoint
		}
		if p.Model != "" {
			out.Model = p.Model
		}
		if p.APIKey != "" {
			out.APIKey = p.APIKey
		}
		if p.SystemPrompt != "" {
			out.SystemPrompt = p.SystemPrompt
		}
	}

	if provider.Detect(out.Endpoint) == provider.Chat {
		out.APIKey = GeminiKeyFallback(out.APIKey)
	}
	return out, nil
}
