package strategy

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// ToJSONSchema converts a struct to a JSON schema. Properties are named after
// the yaml tags so the schema matches what strategy files contain.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.FieldNameTag = "yaml"
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal json schema", err)
	}

	return string(jsonSchemaBytes), nil
}
