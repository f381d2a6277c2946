package validation

import "github.com/ariel-frischer/specguard/internal/document"

// Built-in header schemas, one per document type. A <type>.json file in the
// schemas directory replaces the built-in definition for that type.

var proposalSchema = Schema{
	Type: string(document.KindProposal),
	Fields: []SchemaField{
		{Name: "type", Type: FieldTypeString, Enum: []string{"proposal"}},
		{Name: "title", Type: FieldTypeString, Required: true},
		{Name: "status", Type: FieldTypeString, Enum: []string{"draft", "approved", "rejected", "archived"}},
		{Name: "specs", Type: FieldTypeArray},
		{Name: "author", Type: FieldTypeString},
		{Name: "created", Type: FieldTypeString},
	},
}

var tasksSchema = Schema{
	Type: string(document.KindTasks),
	Fields: []SchemaField{
		{Name: "type", Type: FieldTypeString, Enum: []string{"tasks"}},
		{Name: "title", Type: FieldTypeString},
		{Name: "proposal", Type: FieldTypeString},
		{Name: "created", Type: FieldTypeString},
	},
}

var challengeSchema = Schema{
	Type: string(document.KindChallenge),
	Fields: []SchemaField{
		{Name: "type", Type: FieldTypeString, Enum: []string{"challenge"}},
		{Name: "title", Type: FieldTypeString},
		{Name: "verdict", Type: FieldTypeString, Enum: []string{"approve", "revise", "reject"}},
		{Name: "round", Type: FieldTypeInt},
	},
}

var specSchema = Schema{
	Type: string(document.KindSpec),
	Fields: []SchemaField{
		{Name: "type", Type: FieldTypeString, Enum: []string{"spec"}},
		{Name: "id", Type: FieldTypeString, Pattern: `^[a-z0-9][a-z0-9-]*$`},
		{Name: "title", Type: FieldTypeString},
		{Name: "priority", Type: FieldTypeString, Enum: []string{"low", "medium", "high"}},
		{Name: "depends", Type: FieldTypeArray},
	},
}

var stateSchema = Schema{
	Type: string(document.KindState),
	Fields: []SchemaField{
		{Name: "type", Type: FieldTypeString, Enum: []string{"state"}},
		{Name: "instance", Type: FieldTypeString, Required: true},
		{Name: "version", Type: FieldTypeString, Required: true},
		{Name: "phase", Type: FieldTypeString, Enum: []string{"initial", "proposal", "challenge", "implement", "verify", "archive"}},
		{Name: "iteration", Type: FieldTypeInt},
	},
}

// builtinSchema returns the built-in schema for a document kind.
func builtinSchema(kind document.Kind) *Schema {
	switch kind {
	case document.KindProposal:
		return &proposalSchema
	case document.KindTasks:
		return &tasksSchema
	case document.KindChallenge:
		return &challengeSchema
	case document.KindState:
		return &stateSchema
	default:
		return &specSchema
	}
}
