package idl

import "sync"

type PrimitiveKind uint8

const (
	PrimitiveBoolean PrimitiveKind = iota
	PrimitiveByte
	PrimitiveOctet
	PrimitiveShort
	PrimitiveUnsignedShort
	PrimitiveLong
	PrimitiveUnsignedLong
	PrimitiveLongLong
	PrimitiveUnsignedLongLong
	PrimitiveFloat
	PrimitiveUnrestrictedFloat
	PrimitiveDouble
	PrimitiveUnrestrictedDouble
	PrimitiveDOMString
	PrimitiveByteString
	PrimitiveUSVString
	PrimitiveUTF8String
	PrimitiveObject
	PrimitiveAny
	PrimitiveUndefined
)

var BUILTIN_PRIMITIVE_TYPES = map[string]PrimitiveKind{
	"boolean":             PrimitiveBoolean,
	"byte":                PrimitiveByte,
	"octet":               PrimitiveOctet,
	"short":               PrimitiveShort,
	"unsigned short":      PrimitiveUnsignedShort,
	"long":                PrimitiveLong,
	"unsigned long":       PrimitiveUnsignedLong,
	"long long":           PrimitiveLongLong,
	"unsigned long long":  PrimitiveUnsignedLongLong,
	"float":               PrimitiveFloat,
	"unrestricted float":  PrimitiveUnrestrictedFloat,
	"double":              PrimitiveDouble,
	"unrestricted double": PrimitiveUnrestrictedDouble,
	"DOMString":           PrimitiveDOMString,
	"ByteString":          PrimitiveByteString,
	"USVString":           PrimitiveUSVString,
	"UTF8String":          PrimitiveUTF8String,
	"object":              PrimitiveObject,
	"any":                 PrimitiveAny,
	"undefined":           PrimitiveUndefined,
}

type BufferSourceKind uint8

const (
	BufferArrayBuffer BufferSourceKind = iota
	BufferSharedArrayBuffer
	BufferDataView
	BufferArrayBufferView
	BufferInt8Array
	BufferInt16Array
	BufferInt32Array
	BufferUint8Array
	BufferUint16Array
	BufferUint32Array
	BufferUint8ClampedArray
	BufferBigInt64Array
	BufferBigUint64Array
	BufferFloat32Array
	BufferFloat64Array
)

var BUILTIN_BUFFER_SOURCE_TYPES = map[string]BufferSourceKind{
	"ArrayBuffer":       BufferArrayBuffer,
	"SharedArrayBuffer": BufferSharedArrayBuffer,
	"DataView":          BufferDataView,
	"ArrayBufferView":   BufferArrayBufferView,
	"Int8Array":         BufferInt8Array,
	"Int16Array":        BufferInt16Array,
	"Int32Array":        BufferInt32Array,
	"Uint8Array":        BufferUint8Array,
	"Uint16Array":       BufferUint16Array,
	"Uint32Array":       BufferUint32Array,
	"Uint8ClampedArray": BufferUint8ClampedArray,
	"BigInt64Array":     BufferBigInt64Array,
	"BigUint64Array":    BufferBigUint64Array,
	"Float32Array":      BufferFloat32Array,
	"Float64Array":      BufferFloat64Array,
}

var primitive_names map[PrimitiveKind]string = nil
var buffer_source_names map[BufferSourceKind]string = nil

var computeBuiltinNames = sync.OnceFunc(func() {
	primitive_names = make(map[PrimitiveKind]string, len(BUILTIN_PRIMITIVE_TYPES))
	for name, kind := range BUILTIN_PRIMITIVE_TYPES {
		primitive_names[kind] = name
	}
	buffer_source_names = make(map[BufferSourceKind]string, len(BUILTIN_BUFFER_SOURCE_TYPES))
	for name, kind := range BUILTIN_BUFFER_SOURCE_TYPES {
		buffer_source_names[kind] = name
	}
})

func GetPrimitiveName(k PrimitiveKind) (string, bool) {
	computeBuiltinNames()
	v, ok := primitive_names[k]
	return v, ok
}

func GetBufferSourceName(k BufferSourceKind) (string, bool) {
	computeBuiltinNames()
	v, ok := buffer_source_names[k]
	return v, ok
}

// LookupBuiltinType returns the built in type for a type name, if any. The
// legacy name void is accepted as undefined.
func LookupBuiltinType(name string) (Type, bool) {
	if name == "void" {
		return &PrimitiveType{Kind: PrimitiveUndefined}, true
	}
	if k, ok := BUILTIN_PRIMITIVE_TYPES[name]; ok {
		return &PrimitiveType{Kind: k}, true
	}
	if k, ok := BUILTIN_BUFFER_SOURCE_TYPES[name]; ok {
		return &BufferSourceType{Kind: k}, true
	}
	return nil, false
}
