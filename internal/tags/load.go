package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rcwhitaker/caseindex/internal/common"
)

// tagsSchema validates external tag dictionaries before any regex compiles.
const tagsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tags"],
  "additionalProperties": false,
  "properties": {
    "tags": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": false,
      "patternProperties": {
        "^[a-z0-9_]+$": {
          "type": "array",
          "minItems": 1,
          "items": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("tags.schema.json", tagsSchema)

type tagsFile struct {
	Tags map[string][]string `json:"tags"`
}

// Load reads a tag dictionary from a JSON file of the form
// {"tags": {"name": ["pattern", ...]}} and compiles it.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read tags file")
	}
	return Parse(data)
}

// Parse validates and compiles a raw JSON tag dictionary.
func Parse(data []byte) (*Dictionary, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse tags file: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, common.NewAppError("TAGS_SCHEMA", err.Error(), common.ErrValidation)
	}
	var f tagsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tags file: %w", err)
	}
	return New(f.Tags)
}
