package api

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"fixxyadmin/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/responses.json
var responsesSchema []byte

// Schema names, one per response body the client decodes.
const (
	schemaLogin   = "loginResponse"
	schemaList    = "listResponse"
	schemaDetail  = "detailResponse"
	schemaResolve = "resolveResponse"
)

// schemaSet holds the compiled response schemas keyed by definition name.
type schemaSet struct {
	schemas map[string]*gojsonschema.Schema
}

// loadSchemas compiles every response definition. Each one is wrapped in a
// document that carries all definitions so shared $refs resolve.
func loadSchemas() (*schemaSet, error) {
	var doc struct {
		Definitions map[string]interface{} `json:"definitions"`
	}
	if err := json.Unmarshal(responsesSchema, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse response schemas: %w", err)
	}

	set := &schemaSet{schemas: make(map[string]*gojsonschema.Schema)}
	for _, name := range []string{schemaLogin, schemaList, schemaDetail, schemaResolve} {
		if _, ok := doc.Definitions[name]; !ok {
			return nil, fmt.Errorf("response schema %q not defined", name)
		}
		complete := map[string]interface{}{
			"$schema":     "http://json-schema.org/draft-07/schema#",
			"definitions": doc.Definitions,
			"$ref":        "#/definitions/" + name,
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(complete))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		set.schemas[name] = schema
	}
	return set, nil
}

// validate checks raw against the named schema. Violations come back as a
// ShapeError for op.
func (s *schemaSet) validate(op, name string, raw []byte) error {
	schema, ok := s.schemas[name]
	if !ok {
		return fmt.Errorf("unknown response schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewShapeError(op, err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return errors.NewShapeError(op, details...)
}
