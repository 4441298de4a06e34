// Command schema writes JSON Schemas for fight requests and results.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"newomega/server/internal/combat"
	"newomega/server/internal/fights"
	"newomega/server/internal/modules"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write request.schema.json and result.schema.json")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schemas := map[string]*jsonschema.Schema{
		"request.schema.json": buildRequestSchema(),
		"result.schema.json":  buildResultSchema(),
	}
	for name, schema := range schemas {
		if err := writeSchema(filepath.Join(outDir, name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
			os.Exit(1)
		}
	}
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		Mapper:                     mapType,
	}
}

func buildRequestSchema() *jsonschema.Schema {
	schema := newReflector().Reflect(new(fights.Request))
	schema.Title = "NewOmega Fight Request"
	schema.Description = "Fleets, modules and targeting submitted to POST /fights."
	return schema
}

func buildResultSchema() *jsonschema.Schema {
	schema := newReflector().Reflect(new(combat.Result))
	schema.Title = "NewOmega Fight Result"
	schema.Description = "Self-describing record of a fight; replaying its inputs reproduces it."
	return schema
}

var (
	policyType    = reflect.TypeOf(combat.TargetingPolicy(0))
	channelType   = reflect.TypeOf(modules.Channel(0))
	sideType      = reflect.TypeOf(combat.Side(0))
	outcomeType   = reflect.TypeOf(combat.Outcome(""))
	moduleRefType = reflect.TypeOf(fights.ModuleRef{})
	effectType    = reflect.TypeOf(modules.Effect{})
)

// mapType describes types whose JSON form differs from their Go kind.
func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case policyType:
		names := make([]interface{}, 0)
		for _, policy := range combat.TargetingPolicies() {
			names = append(names, policy.String())
		}
		return &jsonschema.Schema{Type: "string", Enum: names, Description: "Targeting policy name; case, underscores and dashes are ignored on input."}
	case channelType:
		names := []interface{}{modules.ChannelNone.String()}
		for _, channel := range modules.Channels() {
			names = append(names, channel.String())
		}
		return &jsonschema.Schema{Type: "string", Enum: names}
	case sideType:
		return &jsonschema.Schema{Type: "string", Enum: []interface{}{"lhs", "rhs"}}
	case outcomeType:
		return &jsonschema.Schema{Type: "string", Enum: []interface{}{
			string(combat.OutcomeLhsWin), string(combat.OutcomeRhsWin), string(combat.OutcomeDraw),
		}}
	case moduleRefType:
		names := make([]interface{}, 0)
		for _, def := range modules.Catalog() {
			names = append(names, def.Name)
		}
		return &jsonschema.Schema{
			Description: "A catalog module name, a raw effect or null for no module.",
			OneOf: []*jsonschema.Schema{
				{Type: "string", Enum: names},
				effectSchema(),
				{Type: "null"},
			},
		}
	}
	return nil
}

func effectSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(effectType)
	schema.Version = ""
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
