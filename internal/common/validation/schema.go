// Package validation checks inbound webhook payloads against JSON schemas
// before they are dispatched to the orchestrator.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

var connectionStatusSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"companyId":    map[string]interface{}{"type": "string", "minLength": 1},
		"platformKey":  map[string]interface{}{"type": "string", "minLength": 1},
		"connectionId": map[string]interface{}{"type": "string", "minLength": 1},
		"newStatus":    map[string]interface{}{"type": "string", "minLength": 1},
	},
	"required": []interface{}{"companyId", "platformKey", "connectionId", "newStatus"},
}

var dataSyncSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"companyId":    map[string]interface{}{"type": "string", "minLength": 1},
		"connectionId": map[string]interface{}{"type": "string", "minLength": 1},
		"dataType":     map[string]interface{}{"type": "string", "minLength": 1},
	},
	"required": []interface{}{"companyId", "connectionId", "dataType"},
}

var categorisationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"companyId": map[string]interface{}{"type": "string", "minLength": 1},
	},
	"required": []interface{}{"companyId"},
}

// ValidateConnectionStatus validates a connection-status alert payload.
func ValidateConnectionStatus(payload []byte) error {
	return validate(connectionStatusSchema, payload)
}

// ValidateDataSync validates a data-sync alert payload.
func ValidateDataSync(payload []byte) error {
	return validate(dataSyncSchema, payload)
}

// ValidateCategorisation validates a categorisation alert payload.
func ValidateCategorisation(payload []byte) error {
	return validate(categorisationSchema, payload)
}

func validate(schemaMap map[string]interface{}, payload []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}
