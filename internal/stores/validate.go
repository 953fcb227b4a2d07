package stores

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/kginsights/datapuur/internal/domain"
)

// draftSchema constrains schema drafts before they are sent for saving:
// a draft needs a name, at least one node, and relationships that name their
// endpoints. Mirrors the checks the save endpoint applies server-side so the
// user gets validation feedback without a round trip.
const draftSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "nodes"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label"],
        "properties": {"label": {"type": "string", "minLength": 1}}
      }
    },
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "start_node", "end_node"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "start_node": {"type": "string", "minLength": 1},
          "end_node": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// ValidateDraft checks a schema draft against the draft contract. The error
// lists every violation, one per line.
func ValidateDraft(schema *domain.GraphSchema) error {
	doc, err := json.Marshal(schema)
	if err != nil {
		return errors.Wrap(err, "encode schema draft")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(draftSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return errors.Wrap(err, "run draft validation")
	}
	if !result.Valid() {
		msg := "schema draft failed validation:"
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf("\n- %s", desc)
		}
		return errors.New(msg)
	}
	return nil
}
