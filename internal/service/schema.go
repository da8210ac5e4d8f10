package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// schemaPrinter formats validation error messages.
var schemaPrinter = message.NewPrinter(language.English)

var (
	planOutputSchema = map[string]any{
		"type":     "object",
		"required": []any{"plan"},
		"properties": map[string]any{
			"plan": map[string]any{
				"type":        "array",
				"minItems":    1,
				"description": "The generated daily study plan, in the order the sessions should happen.",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"subject", "durationMinutes"},
					"properties": map[string]any{
						"subject": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The subject for this study session.",
						},
						"durationMinutes": map[string]any{
							"type":             "number",
							"exclusiveMinimum": 0,
							"description":      "Length of the study session in minutes.",
						},
						"note": map[string]any{
							"type":        "string",
							"description": "Optional concrete activity, e.g. read chapter 1.",
						},
					},
				},
			},
		},
	}

	chatOutputSchema = map[string]any{
		"type":     "object",
		"required": []any{"answer"},
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The answer to the student's question.",
			},
		},
	}
)

var (
	planSchema *jsonschema.Schema
	chatSchema *jsonschema.Schema
)

func init() {
	planSchema = mustCompileSchema(planOutputSchema, "plan.schema.json")
	chatSchema = mustCompileSchema(chatOutputSchema, "chat.schema.json")
}

func mustCompileSchema(schema map[string]any, name string) *jsonschema.Schema {
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal %s: %v", name, err))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

var errNoOutput = errors.New("model returned no output")

// decodeOutput picks the structured reply when there is one and falls back to
// JSON in the reply text. The document is validated against schema and then
// decoded into out.
func decodeOutput(schema *jsonschema.Schema, structured any, text string, out any) error {
	doc, err := normalizeOutput(structured, text)
	if err != nil {
		return err
	}

	if issues := validateAgainstSchema(schema, doc); len(issues) > 0 {
		return fmt.Errorf("output does not match schema: %s", strings.Join(issues, "; "))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: jsonNumberHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

// normalizeOutput turns either form of reply into a JSON document with
// json.Number values, which is what the validator expects.
func normalizeOutput(structured any, text string) (any, error) {
	var raw []byte
	if structured != nil {
		b, err := json.Marshal(structured)
		if err != nil {
			return nil, fmt.Errorf("marshal structured output: %w", err)
		}
		raw = b
	} else {
		body := stripCodeFence(text)
		if body == "" {
			return nil, errNoOutput
		}
		raw = []byte(body)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse output: %w", err)
	}
	return doc, nil
}

// stripCodeFence removes a surrounding ```json fence, if any.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var issues []string
	collectSchemaErrors(ve, &issues)
	return issues
}

func collectSchemaErrors(ve *jsonschema.ValidationError, issues *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*issues = append(*issues, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, issues)
	}
}

func jsonNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int64:
		return n.Int64()
	default:
		return n.Float64()
	}
}
