package review

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/patient_review_schema_v1.json
var patientReviewSchemaV1 []byte

// SchemaVersion identifies the embedded review schema.
const SchemaVersion = "1.0"

var reviewSchema = mustLoadSchema(patientReviewSchemaV1)

func mustLoadSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("review: invalid embedded schema: %v", err))
	}
	return schema
}

// FieldError names one field that failed validation and why.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaError is returned when a candidate does not match the review schema.
type SchemaError struct {
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "review failed schema validation: " + strings.Join(parts, "; ")
}

// FieldNames returns the distinct names of the failing fields, sorted.
func (e *SchemaError) FieldNames() []string {
	seen := make(map[string]bool, len(e.Fields))
	var names []string
	for _, f := range e.Fields {
		if !seen[f.Field] {
			seen[f.Field] = true
			names = append(names, f.Field)
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether field is among the failing fields.
func (e *SchemaError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ValidateSchema redacts the review text of c and validates the result
// against the review schema. The returned record carries the redacted text;
// the review length bound is checked on that text.
func ValidateSchema(c Candidate) (PatientReview, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return PatientReview{}, &SchemaError{Fields: []FieldError{{Field: "(root)", Reason: err.Error()}}}
	}
	return ValidateSchemaJSON(payload)
}

// ValidateSchemaJSON is ValidateSchema for a raw JSON document, so missing or
// wrongly typed fields are reported instead of being zero-filled.
func ValidateSchemaJSON(payload []byte) (PatientReview, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return PatientReview{}, &SchemaError{Fields: []FieldError{{Field: "(root)", Reason: "invalid JSON: " + err.Error()}}}
	}
	if text, ok := doc["review"].(string); ok {
		doc["review"] = TransformReviewText(text)
	}

	result, err := reviewSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return PatientReview{}, &SchemaError{Fields: []FieldError{{Field: "(root)", Reason: err.Error()}}}
	}
	if !result.Valid() {
		return PatientReview{}, newSchemaError(result.Errors())
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return PatientReview{}, &SchemaError{Fields: []FieldError{{Field: "(root)", Reason: err.Error()}}}
	}
	var rec PatientReview
	if err := json.Unmarshal(normalized, &rec); err != nil {
		return PatientReview{}, &SchemaError{Fields: []FieldError{{Field: "(root)", Reason: err.Error()}}}
	}
	return rec, nil
}

func newSchemaError(errs []gojsonschema.ResultError) *SchemaError {
	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, FieldError{Field: fieldOf(e), Reason: e.Description()})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &SchemaError{Fields: fields}
}

// fieldOf maps a schema error to the property it concerns. Errors about a
// missing or unknown property are reported on the root object by gojsonschema.
func fieldOf(e gojsonschema.ResultError) string {
	switch e.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := e.Details()["property"].(string); ok && prop != "" {
			return prop
		}
	}
	return e.Field()
}
