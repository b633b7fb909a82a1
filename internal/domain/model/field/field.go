// Package field declares the native field vocabulary of content models.
package field

// Type is the declared storage type of a model field.
type Type string

// Native field type constants.
const (
	TypeString   Type = "string"
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeDateTime Type = "datetime"
	TypeObjectID Type = "object_id"
	TypeList     Type = "list"
	TypeMap      Type = "map"
	TypeBinary   Type = "binary"
	TypeDecimal  Type = "decimal"
	// TypeReference links to another collection's identity field.
	TypeReference Type = "reference"
)

// IsValid checks if the type is one of the declared vocabulary.
func (t Type) IsValid() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeDateTime, TypeObjectID,
		TypeList, TypeMap, TypeBinary, TypeDecimal, TypeReference:
		return true
	}
	return false
}

// Field is an immutable field declaration.
type Field struct {
	name         string
	fieldType    Type
	required     bool
	ref          string
	defaultValue any
}

// String declares a text field.
func String(name string) Field { return Field{name: name, fieldType: TypeString} }

// Int declares an integer field.
func Int(name string) Field { return Field{name: name, fieldType: TypeInt} }

// Float declares a floating-point field.
func Float(name string) Field { return Field{name: name, fieldType: TypeFloat} }

// Bool declares a boolean field.
func Bool(name string) Field { return Field{name: name, fieldType: TypeBool} }

// DateTime declares a timestamp field.
func DateTime(name string) Field { return Field{name: name, fieldType: TypeDateTime} }

// ObjectID declares a store identifier field.
func ObjectID(name string) Field { return Field{name: name, fieldType: TypeObjectID} }

// List declares an array field.
func List(name string) Field { return Field{name: name, fieldType: TypeList} }

// Map declares an embedded document field.
func Map(name string) Field { return Field{name: name, fieldType: TypeMap} }

// Binary declares a raw bytes field.
func Binary(name string) Field { return Field{name: name, fieldType: TypeBinary} }

// Decimal declares a high-precision decimal field.
func Decimal(name string) Field { return Field{name: name, fieldType: TypeDecimal} }

// Reference declares a link to another collection's identity field.
func Reference(name, target string) Field {
	return Field{name: name, fieldType: TypeReference, ref: target}
}

// Required marks the field as mandatory (non-nullable).
func (f Field) Required() Field {
	f.required = true
	return f
}

// WithDefault attaches a default value.
func (f Field) WithDefault(v any) Field {
	f.defaultValue = v
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the declared native type.
func (f Field) FieldType() Type { return f.fieldType }

// IsRequired reports whether the field is mandatory.
func (f Field) IsRequired() bool { return f.required }

// Ref returns the referenced collection name (reference fields only).
func (f Field) Ref() string { return f.ref }

// Default returns the declared default value, nil if none.
func (f Field) Default() any { return f.defaultValue }
