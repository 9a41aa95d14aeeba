// Package object provides the value types produced by rule evaluation.
//
// For external users, an object.Object interface value is usually type
// asserted to a specific object type, such as *object.Float:
//
//	switch obj := obj.(type) {
//	case *object.Float:
//		// do something with obj.Value()
//	case *object.Bool:
//		// do something with obj.Value()
//	}
//
// Values are immutable once created; every engine operation produces a new
// value rather than mutating an existing one.
package object

// Type of an object as a string.
type Type string

// Type constants
const (
	BOOL        Type = "bool"
	FLOAT       Type = "float"
	FLOAT_SLICE Type = "float_slice"
	INT         Type = "int"
	MAP         Type = "map"
	STRING      Type = "string"
)

var (
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Object is the interface that all value types must implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() interface{}

	// Equals returns true if the given object is equal to this object.
	Equals(other Object) bool
}
