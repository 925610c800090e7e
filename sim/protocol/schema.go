package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var inboundSchemas map[string]*jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	files := map[string]string{
		TypeReady:  "schemas/ready.schema.json",
		TypeAction: "schemas/action.schema.json",
		TypeReset:  "schemas/reset.schema.json",
	}
	schemas := make(map[string]*jsonschema.Schema, len(files))
	for msgType, path := range files {
		b, err := schemaFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("protocol: embedded schema %s missing: %v", path, err))
		}
		if err := compiler.AddResource(path, bytes.NewReader(b)); err != nil {
			panic(fmt.Sprintf("protocol: schema %s invalid: %v", path, err))
		}
		s, err := compiler.Compile(path)
		if err != nil {
			panic(fmt.Sprintf("protocol: schema %s failed to compile: %v", path, err))
		}
		schemas[msgType] = s
	}
	inboundSchemas = schemas
}

// ValidateInbound checks raw against the schema registered for msgType.
// Protocol errors here (§7.1) are the caller's signal to degrade the
// in-flight task to WAIT and retry rather than propagate a crash.
func ValidateInbound(msgType string, raw []byte) error {
	schema, ok := inboundSchemas[msgType]
	if !ok {
		return fmt.Errorf("protocol: no schema registered for message type %q", msgType)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("protocol: malformed JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("protocol: schema validation failed for %q: %w", msgType, err)
	}
	return nil
}
