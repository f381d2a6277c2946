// Package config loads the validation rule configuration.
// Rules are layered: built-in presets, then an optional JSON rules file,
// then SPECGUARD_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Rules is the validation rule configuration for one document kind.
type Rules struct {
	// RequirementPattern is matched against level-3 heading text inside the
	// requirements section.
	RequirementPattern string `koanf:"requirement_pattern" validate:"required"`
	// ScenarioPattern is matched against level-4 heading text.
	ScenarioPattern string `koanf:"scenario_pattern" validate:"required"`
	// RequiredHeadings must all be present (case-insensitive,
	// exact-or-prefix match on heading text).
	RequiredHeadings []string `koanf:"required_headings"`
	// MinScenarios is the minimum number of level-4 scenario headings.
	MinScenarios int `koanf:"min_scenarios" validate:"min=0,max=100"`
	// RequireWhenThen toggles the WHEN/THEN clause presence check.
	RequireWhenThen bool `koanf:"require_when_then"`
	// Severity overrides the default severity per error category.
	// Keys are category names, values one of high, medium, low.
	Severity map[string]string `koanf:"severity" validate:"dive,oneof=high medium low"`
}

// RuleSet holds one rule preset per document kind. Proposal, tasks, and
// challenge documents get the lenient preset; specs get the strict one.
type RuleSet struct {
	Proposal  Rules `koanf:"proposal"`
	Tasks     Rules `koanf:"tasks"`
	Challenge Rules `koanf:"challenge"`
	Spec      Rules `koanf:"spec"`
}

// ForKind returns the rules for the given document kind name. Unknown kinds
// fall back to the strict spec preset.
func (rs *RuleSet) ForKind(kind string) Rules {
	switch kind {
	case "proposal":
		return rs.Proposal
	case "tasks":
		return rs.Tasks
	case "challenge":
		return rs.Challenge
	default:
		return rs.Spec
	}
}

// Load builds the rule set from defaults, an optional JSON rules file, and
// SPECGUARD_ environment variables (highest priority).
func Load(rulesPath string) (*RuleSet, error) {
	k := koanf.New(".")

	for key, value := range defaultRules() {
		k.Set(key, value)
	}

	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); err == nil {
			if err := k.Load(file.Provider(rulesPath), json.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load rules file: %w", err)
			}
		}
	}

	k.Load(env.Provider("SPECGUARD_", ".", envTransform), nil)

	var rs RuleSet
	if err := k.Unmarshal("", &rs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(rs); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}

	return &rs, nil
}

// Default returns the built-in rule presets without consulting any file or
// environment source.
func Default() *RuleSet {
	return &RuleSet{
		Proposal:  lenientPreset("Overview"),
		Tasks:     lenientPreset(),
		Challenge: lenientPreset(),
		Spec:      strictPreset(),
	}
}

// envTransform converts environment variable names to config keys.
// Example: SPECGUARD_SPEC_MIN_SCENARIOS -> spec.min_scenarios
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "SPECGUARD_"))
	for _, kind := range []string{"proposal", "tasks", "challenge", "spec"} {
		if rest, ok := strings.CutPrefix(key, kind+"_"); ok {
			return kind + "." + rest
		}
	}
	return key
}
