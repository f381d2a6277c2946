package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/specguard/internal/document"
)

// FieldType is the expected type of a schema field.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeBool   FieldType = "bool"
	FieldTypeArray  FieldType = "array"
	FieldTypeObject FieldType = "object"
)

// SchemaField defines one field in a document header schema.
type SchemaField struct {
	Name     string        `koanf:"name"`
	Type     FieldType     `koanf:"type"`
	Required bool          `koanf:"required"`
	Pattern  string        `koanf:"pattern"` // regex for string values, optional
	Enum     []string      `koanf:"enum"`    // allowed values, optional
	Children []SchemaField `koanf:"children"`
}

// Schema is the header schema for one document type.
type Schema struct {
	Type   string        `koanf:"type"`
	Fields []SchemaField `koanf:"fields"`
}

// compiledField is a schema field with its pattern pre-compiled.
type compiledField struct {
	SchemaField
	pattern  *regexp.Regexp
	children []compiledField
}

type compiledSchema struct {
	kind   document.Kind
	fields []compiledField
}

// SchemaValidator validates a document's header block against the schema for
// its declared or inferred document type. Compiled schemas are cached per
// validator instance, one per type, never process-wide.
type SchemaValidator struct {
	schemasDir string // optional directory of <type>.json definitions
	cache      map[document.Kind]*compiledSchema
}

// NewSchemaValidator builds a schema validator. If schemasDir is non-empty,
// a <type>.json file there overrides the built-in schema for that type.
func NewSchemaValidator(schemasDir string) *SchemaValidator {
	return &SchemaValidator{
		schemasDir: schemasDir,
		cache:      make(map[document.Kind]*compiledSchema),
	}
}

// ValidateFile loads and validates the document at path.
func (v *SchemaValidator) ValidateFile(path string) *ValidationResult {
	result := &ValidationResult{}

	doc, err := document.Load(path)
	if err != nil {
		result.Add(&ValidationError{
			Message:  fmt.Sprintf("cannot read file: %v", err),
			File:     path,
			Severity: SeverityHigh,
			Category: CategoryInvalidStructure,
		})
		return result
	}
	return v.Validate(doc)
}

// Validate checks the document's header block against its type's schema.
// Documents without a header block are skipped: the header is optional.
// A malformed header or an uncompilable schema yields one error for the
// file, never a crash.
func (v *SchemaValidator) Validate(doc *document.Document) *ValidationResult {
	result := &ValidationResult{}

	if doc.HeaderErr != nil {
		result.Add(&ValidationError{
			Message:  doc.HeaderErr.Error(),
			File:     doc.Path,
			Line:     1,
			Severity: SeverityHigh,
			Category: CategoryInvalidStructure,
		})
		return result
	}
	if doc.Header == nil || doc.Header.Fields == nil {
		return result
	}

	kind := document.DetectKind(doc.Path, doc)
	schema, err := v.schemaFor(kind)
	if err != nil {
		result.Add(&ValidationError{
			Message:  fmt.Sprintf("schema for %s: %v", kind, err),
			File:     doc.Path,
			Severity: SeverityHigh,
			Category: CategoryInvalidStructure,
		})
		return result
	}

	for _, violation := range checkFields(schema.fields, doc.Header.Fields, "") {
		result.Add(&ValidationError{
			Message:  violation.message,
			File:     doc.Path,
			Line:     1,
			Severity: violationSeverity(violation.keyword),
			Category: CategoryInvalidStructure,
		})
	}
	return result
}

// schemaFor returns the compiled schema for a document kind, compiling and
// caching it lazily on first use.
func (v *SchemaValidator) schemaFor(kind document.Kind) (*compiledSchema, error) {
	if schema, ok := v.cache[kind]; ok {
		return schema, nil
	}

	def, err := v.loadSchema(kind)
	if err != nil {
		return nil, err
	}

	compiled, err := compileSchema(kind, def)
	if err != nil {
		return nil, err
	}

	v.cache[kind] = compiled
	return compiled, nil
}

// loadSchema reads a <type>.json schema definition from the schemas
// directory, falling back to the built-in schema for the type.
func (v *SchemaValidator) loadSchema(kind document.Kind) (*Schema, error) {
	if v.schemasDir != "" {
		path := filepath.Join(v.schemasDir, string(kind)+".json")
		if _, err := os.Stat(path); err == nil {
			k := koanf.New(".")
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
			}
			var def Schema
			if err := k.Unmarshal("", &def); err != nil {
				return nil, fmt.Errorf("reading schema file %s: %w", path, err)
			}
			return &def, nil
		}
	}
	return builtinSchema(kind), nil
}

// compileSchema pre-compiles all field patterns in a schema definition.
func compileSchema(kind document.Kind, def *Schema) (*compiledSchema, error) {
	fields, err := compileFields(def.Fields)
	if err != nil {
		return nil, err
	}
	return &compiledSchema{kind: kind, fields: fields}, nil
}

func compileFields(defs []SchemaField) ([]compiledField, error) {
	var fields []compiledField
	for _, def := range defs {
		cf := compiledField{SchemaField: def}
		if def.Pattern != "" {
			re, err := regexp.Compile(def.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern for field %s: %w", def.Name, err)
			}
			cf.pattern = re
		}
		children, err := compileFields(def.Children)
		if err != nil {
			return nil, err
		}
		cf.children = children
		fields = append(fields, cf)
	}
	return fields, nil
}

// violation is one schema check failure. The keyword drives severity
// mapping: required, type, and enum violations are high severity.
type violation struct {
	path    string
	keyword string
	message string
}

func violationSeverity(keyword string) Severity {
	switch {
	case strings.Contains(keyword, "required"),
		strings.Contains(keyword, "type"),
		strings.Contains(keyword, "enum"):
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// checkFields validates a generic header value against a field list.
func checkFields(fields []compiledField, values map[string]any, prefix string) []violation {
	var violations []violation

	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		value, present := values[field.Name]
		if !present {
			if field.Required {
				violations = append(violations, violation{
					path:    path,
					keyword: "required",
					message: fmt.Sprintf("header field %s: missing required field", path),
				})
			}
			continue
		}

		violations = append(violations, checkValue(field, path, value)...)
	}
	return violations
}

func checkValue(field compiledField, path string, value any) []violation {
	var violations []violation

	typeErr := func(expected string) violation {
		return violation{
			path:    path,
			keyword: "type",
			message: fmt.Sprintf("header field %s: expected %s, got %T", path, expected, value),
		}
	}

	switch field.Type {
	case FieldTypeString:
		s, ok := value.(string)
		if !ok {
			return append(violations, typeErr("string"))
		}
		if len(field.Enum) > 0 && !containsString(field.Enum, s) {
			violations = append(violations, violation{
				path:    path,
				keyword: "enum",
				message: fmt.Sprintf("header field %s: %q is not one of %s", path, s, strings.Join(field.Enum, ", ")),
			})
		}
		if field.pattern != nil && !field.pattern.MatchString(s) {
			violations = append(violations, violation{
				path:    path,
				keyword: "pattern",
				message: fmt.Sprintf("header field %s: %q does not match pattern %s", path, s, field.Pattern),
			})
		}
	case FieldTypeInt:
		switch value.(type) {
		case int, int64, uint64:
		default:
			violations = append(violations, typeErr("int"))
		}
	case FieldTypeBool:
		if _, ok := value.(bool); !ok {
			violations = append(violations, typeErr("bool"))
		}
	case FieldTypeArray:
		items, ok := value.([]any)
		if !ok {
			return append(violations, typeErr("array"))
		}
		if len(field.children) > 0 {
			for i, item := range items {
				obj, ok := item.(map[string]any)
				if !ok {
					violations = append(violations, violation{
						path:    fmt.Sprintf("%s[%d]", path, i),
						keyword: "type",
						message: fmt.Sprintf("header field %s[%d]: expected object, got %T", path, i, item),
					})
					continue
				}
				violations = append(violations, checkFields(field.children, obj, fmt.Sprintf("%s[%d]", path, i))...)
			}
		}
	case FieldTypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return append(violations, typeErr("object"))
		}
		violations = append(violations, checkFields(field.children, obj, path)...)
	}
	return violations
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
