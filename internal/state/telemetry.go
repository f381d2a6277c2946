package state

import "time"

// Telemetry accumulates usage totals for external assistant calls made on
// behalf of this instance, plus a per-call ledger.
type Telemetry struct {
	TotalInputTokens  int64          `yaml:"total_input_tokens"`
	TotalOutputTokens int64          `yaml:"total_output_tokens"`
	TotalCostUSD      float64        `yaml:"total_cost_usd"`
	TotalSeconds      float64        `yaml:"total_seconds"`
	Calls             []LLMCallEntry `yaml:"calls,omitempty"`
}

// LLMCallEntry is one ledger entry for an external assistant call.
type LLMCallEntry struct {
	Timestamp    time.Time `yaml:"timestamp"`
	Model        string    `yaml:"model"`
	InputTokens  int64     `yaml:"input_tokens"`
	OutputTokens int64     `yaml:"output_tokens"`
	CostUSD      float64   `yaml:"cost_usd"`
	Seconds      float64   `yaml:"seconds"`
}

// Pricing is the optional per-million-token price for a model. Zero values
// mean the price is unknown and no cost is computed.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// RecordLLMCall accumulates token, cost, and duration totals and appends
// one ledger entry. Cost is computed only when per-token pricing is
// supplied, as (tokens / 1e6) x price.
func (t *Tracker) RecordLLMCall(model string, inputTokens, outputTokens int64, duration time.Duration, pricing Pricing) {
	if t.record.Telemetry == nil {
		t.record.Telemetry = &Telemetry{}
	}
	tel := t.record.Telemetry

	cost := 0.0
	if pricing.InputPerMTok > 0 {
		cost += float64(inputTokens) / 1e6 * pricing.InputPerMTok
	}
	if pricing.OutputPerMTok > 0 {
		cost += float64(outputTokens) / 1e6 * pricing.OutputPerMTok
	}

	entry := LLMCallEntry{
		Timestamp:    time.Now().UTC(),
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
		Seconds:      duration.Seconds(),
	}

	tel.TotalInputTokens += inputTokens
	tel.TotalOutputTokens += outputTokens
	tel.TotalCostUSD += cost
	tel.TotalSeconds += entry.Seconds
	tel.Calls = append(tel.Calls, entry)
	t.dirty = true
}
