package tigercache

import "github.com/standardbeagle/tigercache/internal/doc"

// Document, Value, and the field-value constructors are re-exported from
// internal/doc so the index/rank/cache packages can share the type
// without importing the public API surface.
type (
	Document  = doc.Document
	Value     = doc.Value
	ValueKind = doc.ValueKind
)

const (
	KindNull   = doc.KindNull
	KindText   = doc.KindText
	KindNumber = doc.KindNumber
	KindBool   = doc.KindBool
	KindArray  = doc.KindArray
	KindMap    = doc.KindMap
)

var (
	NewDocument = doc.NewDocument
	NewText     = doc.NewText
	NewNumber   = doc.NewNumber
	NewBool     = doc.NewBool
	NewArray    = doc.NewArray
	NewMap      = doc.NewMap
)
