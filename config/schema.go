package config

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema configuration documents are checked against.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidateSchema checks the JSON form of cfg against the embedded schema.
func ValidateSchema(cfg *Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return errors.WrapInternal(err, "Config", "ValidateSchema", "marshal config")
	}
	return validateDocument(doc)
}

func validateDocument(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return errors.WrapInternal(err, "Config", "ValidateSchema", "schema evaluation")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.Field()+": "+desc.Description())
	}
	return errors.Invalidf(errors.ErrInvalidConfig, "Config", "ValidateSchema",
		"schema validation failed: %s", strings.Join(msgs, "; "))
}
