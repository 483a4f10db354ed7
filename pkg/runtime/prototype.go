package runtime

import "github.com/weftlang/weft/pkg/ioop"

// BuiltinClass names one of the closed set of built-in classes a runtime
// value can be tagged with. Full prototype objects are out of scope, so
// this stands in for them as a fixed, comparable identifier.
type BuiltinClass string

const (
	ClassInteger       BuiltinClass = "Integer"
	ClassFloat         BuiltinClass = "Float"
	ClassString        BuiltinClass = "String"
	ClassArray         BuiltinClass = "Array"
	ClassHash          BuiltinClass = "Hash"
	ClassReadOnlyFile  BuiltinClass = "ReadOnlyFile"
	ClassWriteOnlyFile BuiltinClass = "WriteOnlyFile"
	ClassReadWriteFile BuiltinClass = "ReadWriteFile"
)

// prototypeRegistry is the closed, fixed set of built-in classes every
// State is constructed with.
var prototypeRegistry = []BuiltinClass{
	ClassInteger, ClassFloat, ClassString, ClassArray, ClassHash,
	ClassReadOnlyFile, ClassWriteOnlyFile, ClassReadWriteFile,
}

// ClassForFilePrototype maps the prototype an ioop.File was opened with
// to the built-in class name registered for it.
func ClassForFilePrototype(p ioop.Prototype) BuiltinClass {
	switch p {
	case ioop.PrototypeReadOnly:
		return ClassReadOnlyFile
	case ioop.PrototypeWriteOnly:
		return ClassWriteOnlyFile
	default:
		return ClassReadWriteFile
	}
}
