package config

const (
	// defaultRequirementPattern matches requirement heading text like "R1: Title".
	defaultRequirementPattern = `^R\d+:\s+.+$`
	// defaultScenarioPattern matches scenario heading text like "Scenario: Name".
	defaultScenarioPattern = `^Scenario:\s+.+$`
)

// strictPreset is the preset for per-capability spec documents.
func strictPreset() Rules {
	return Rules{
		RequirementPattern: defaultRequirementPattern,
		ScenarioPattern:    defaultScenarioPattern,
		RequiredHeadings:   []string{"Overview", "Requirements", "Acceptance Criteria"},
		MinScenarios:       1,
		RequireWhenThen:    true,
	}
}

// lenientPreset is the preset for proposal, tasks, and challenge documents.
func lenientPreset(requiredHeadings ...string) Rules {
	return Rules{
		RequirementPattern: defaultRequirementPattern,
		ScenarioPattern:    defaultScenarioPattern,
		RequiredHeadings:   requiredHeadings,
		MinScenarios:       0,
		RequireWhenThen:    false,
	}
}

// defaultRules returns the built-in presets as a flat koanf key map so file
// and environment sources can override individual keys.
func defaultRules() map[string]any {
	presets := map[string]Rules{
		"proposal":  lenientPreset("Overview"),
		"tasks":     lenientPreset(),
		"challenge": lenientPreset(),
		"spec":      strictPreset(),
	}

	flat := make(map[string]any)
	for kind, rules := range presets {
		flat[kind+".requirement_pattern"] = rules.RequirementPattern
		flat[kind+".scenario_pattern"] = rules.ScenarioPattern
		flat[kind+".required_headings"] = rules.RequiredHeadings
		flat[kind+".min_scenarios"] = rules.MinScenarios
		flat[kind+".require_when_then"] = rules.RequireWhenThen
	}
	return flat
}
