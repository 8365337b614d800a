package airtable

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// leadFieldsSchema constrains the record payload sent to the lead table so a
// malformed field map is rejected before it reaches the API.
const leadFieldsSchema = `{
	"type": "object",
	"required": ["Name"],
	"properties": {
		"Name":                {"type": "string", "minLength": 1},
		"Website":             {"type": "string"},
		"Email":               {"type": "string"},
		"Phone":               {"type": "string"},
		"Industry":            {"type": "string"},
		"Company Size":        {"type": "string"},
		"Address":             {"type": "string"},
		"LinkedIn":            {"type": "string"},
		"Background":          {"type": "string"},
		"Score":               {"type": "string", "enum": ["Hot", "Warm", "Cold"]},
		"Numerical Score":     {"type": "integer", "minimum": 0, "maximum": 10},
		"Score Reasoning":     {"type": "string"},
		"Personalized Opener": {"type": "string"},
		"Subject Line":        {"type": "string"},
		"Enriched":            {"type": "boolean"},
		"Email Sent":          {"type": "boolean"},
		"UUID":                {"type": "string"},
		"Funding Round":       {"type": "string"},
		"New Hires":           {"type": "string"},
		"Product Launch":      {"type": "string"}
	},
	"additionalProperties": false
}`

var compiledLeadSchema = jsonschema.MustCompileString("lead_fields.json", leadFieldsSchema)

func validateLeadFields(fields map[string]any) error {
	doc := make(map[string]any, len(fields))
	for key, value := range fields {
		if n, ok := value.(int); ok {
			// The validator works on decoded JSON values; align ints before
			// they round-trip through encoding.
			doc[key] = float64(n)
			continue
		}
		doc[key] = value
	}

	if err := compiledLeadSchema.Validate(doc); err != nil {
		return err
	}

	return nil
}
