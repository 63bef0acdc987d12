package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/nugetrun/internal/errors"
)

// settingsSchema validates nugetrun.yaml before it is decoded into
// Settings, so typos surface as field-level messages instead of silent
// zero values.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "toolPath"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer", "enum": [1]},
    "toolPath": {"type": "string", "minLength": 1},
    "onPremises": {"type": "boolean"},
    "disableExtensions": {"type": "boolean"},
    "credentialProvider": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "folder": {"type": "string"},
        "pluginPaths": {"type": "string"}
      }
    },
    "forceCredentialProvider": {"type": "string"},
    "forceCredentialConfig": {"type": "string"},
    "uriPrefixes": {"type": "array", "items": {"type": "string"}},
    "timeoutSeconds": {"type": "integer", "minimum": 0},
    "proxy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "url": {"type": "string"},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "passwordFromKeyring": {"type": "boolean"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "path": {"type": "string"}
      }
    }
  }
}`

// validateSettings checks raw YAML against the settings schema.
func validateSettings(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return dserrors.UserError{
			Message:    "Failed to parse config file",
			Details:    err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(settingsSchema),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return dserrors.ConfigError{
			Message:    "nugetrun.yaml failed schema validation",
			Suggestion: strings.Join(details, "; "),
		}
	}
	return nil
}
