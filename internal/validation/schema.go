package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dpshade/pocket-embed/internal/models"
)

// Schema names
const (
	SchemaWebhookSettings = "webhook_settings"
	SchemaTemplate        = "template"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Custom    func(interface{}) error
}

// Schema represents a validation schema for flat inputs
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// ValidateInput validates flat data against a named schema
func (v *Validator) ValidateInput(schemaName string, data map[string]interface{}) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Data:     make(map[string]interface{}),
	}

	// sorted so Errors[0], which ToAppError reports, is stable
	names := make([]string, 0, len(schema.Fields))
	for fieldName := range schema.Fields {
		names = append(names, fieldName)
	}
	sort.Strings(names)
	for _, fieldName := range names {
		v.validateField(fieldName, schema.Fields[fieldName], data, result)
	}

	return result
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, data map[string]interface{}, result *ValidationResult) {
	value, exists := data[fieldName]

	if validator.Required && (!exists || value == nil || value == "") {
		result.fail(fieldName, "REQUIRED_FIELD_MISSING", fmt.Sprintf("Field '%s' is required", fieldName), nil)
		return
	}

	if !exists || value == nil {
		return
	}

	convertedValue, err := convertType(fieldName, validator.Type, value)
	if err != nil {
		result.fail(fieldName, "INVALID_TYPE", err.Error(), value)
		return
	}
	result.Data[fieldName] = convertedValue

	if str, ok := convertedValue.(string); ok && validator.Type == "string" {
		n := utf8.RuneCountInString(str)
		if validator.MinLength > 0 && n < validator.MinLength {
			result.fail(fieldName, "MIN_LENGTH_VIOLATION",
				fmt.Sprintf("Field '%s' must be at least %d characters long", fieldName, validator.MinLength), str)
		}
		if validator.MaxLength > 0 && n > validator.MaxLength {
			result.fail(fieldName, "MAX_LENGTH_VIOLATION",
				fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength), str)
		}
		if validator.Pattern != nil && str != "" && !validator.Pattern.MatchString(str) {
			result.fail(fieldName, "PATTERN_MISMATCH",
				fmt.Sprintf("Field '%s' does not match required pattern", fieldName), str)
		}
	}

	if validator.Custom != nil {
		if err := validator.Custom(convertedValue); err != nil {
			result.fail(fieldName, "CUSTOM_VALIDATION_FAILED", fmt.Sprintf("Field '%s': %s", fieldName, err.Error()), convertedValue)
		}
	}
}

func convertType(fieldName, expectedType string, value interface{}) (interface{}, error) {
	switch expectedType {
	case "string":
		if str, ok := value.(string); ok {
			return strings.TrimSpace(str), nil
		}
		return fmt.Sprintf("%v", value), nil

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if boolVal, err := strconv.ParseBool(val); err == nil {
				return boolVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", fieldName)

	default:
		return value, nil
	}
}

func optionalURL(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !IsValidURL(s) {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

// registerBuiltinSchemas registers the schemas used by the service layer
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: SchemaWebhookSettings,
		Fields: map[string]FieldValidator{
			"url": {
				Name:     "url",
				Type:     "string",
				Required: true,
				Custom: func(value interface{}) error {
					if s, _ := value.(string); !IsValidURL(s) {
						return fmt.Errorf("must be an http(s) URL")
					}
					return nil
				},
			},
			"username": {
				Name:      "username",
				Type:      "string",
				MaxLength: models.MaxUsername,
			},
			"avatar_url": {
				Name:   "avatar_url",
				Type:   "string",
				Custom: optionalURL,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaTemplate,
		Fields: map[string]FieldValidator{
			"label": {
				Name:      "label",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: 100,
				Pattern:   regexp.MustCompile(`^[^\x00-\x1f]+$`),
			},
			"description": {
				Name:      "description",
				Type:      "string",
				MaxLength: 500,
			},
		},
	})
}
