// Package tool defines the tool contract for the coordination engine:
// declared parameter schemas, validation and repair of extracted calls,
// and the dual-registry router that resolves and executes them.
package tool

// ParamType identifies the declared type of a schema field.
// The set mirrors the JSON value model.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Field declares one parameter of a tool schema.
type Field struct {
	// Name is the canonical parameter name.
	Name string `json:"name"`

	// Type is the expected JSON type of the value.
	Type ParamType `json:"type"`

	// Required marks the field as mandatory.
	Required bool `json:"required"`

	// Description is surfaced to the LLM in the system prompt.
	Description string `json:"description,omitempty"`

	// Aliases are alternative names accepted during repair.
	Aliases []string `json:"aliases,omitempty"`

	// Default, when non-nil, fills a missing required field during repair.
	Default any `json:"default,omitempty"`

	// Enum, when non-empty, restricts string values to the listed set.
	Enum []string `json:"enum,omitempty"`
}

// Schema declares the parameters a tool accepts.
// Field order is declaration order and determines violation ordering.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Field returns the declared field with the given canonical name.
func (s *Schema) Field(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Required returns the names of all required fields in declaration order.
func (s *Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
