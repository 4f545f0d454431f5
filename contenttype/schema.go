package contenttype

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var documentSchema []byte

const documentSchemaURL = "folio://schema/content-type.json"

// DocumentValidator checks raw content type documents against the
// content type JSON Schema before they are decoded.
type DocumentValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewDocumentValidator creates a document validator. The schema is
// compiled on first use and cached.
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

func (v *DocumentValidator) compile() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchema))
		if err != nil {
			v.err = fmt.Errorf("unmarshal schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if addErr := c.AddResource(documentSchemaURL, doc); addErr != nil {
			v.err = fmt.Errorf("add schema resource: %w", addErr)
			return
		}

		v.compiled, v.err = c.Compile(documentSchemaURL)
		if v.err != nil {
			v.err = fmt.Errorf("compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

// Validate checks raw against the schema. Structural problems are
// reported as a *ValidationError.
func (v *DocumentValidator) Validate(raw []byte) error {
	compiled, err := v.compile()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Field: "document", Message: "invalid JSON"}
	}

	if err := compiled.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ValidationError{Field: documentLocation(ve), Message: ve.Error()}
		}
		return &ValidationError{Field: "document", Message: err.Error()}
	}
	return nil
}

// ParseInput validates and decodes a creation document.
func (v *DocumentValidator) ParseInput(raw []byte) (Input, error) {
	if err := v.Validate(raw); err != nil {
		return Input{}, err
	}
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, &ValidationError{Field: "document", Message: err.Error()}
	}
	return in, nil
}

// ParseUpdate validates and decodes an update document.
func (v *DocumentValidator) ParseUpdate(raw []byte) (UpdateInput, error) {
	if err := v.Validate(raw); err != nil {
		return UpdateInput{}, err
	}
	var in UpdateInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return UpdateInput{}, &ValidationError{Field: "document", Message: err.Error()}
	}
	return in, nil
}

// documentLocation returns the instance path of the deepest cause.
func documentLocation(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if len(ve.InstanceLocation) == 0 {
		return "document"
	}
	return strings.Join(ve.InstanceLocation, ".")
}
