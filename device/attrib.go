package device

import "errors"

// ErrIncompatibleAttribute is returned when vertex data cannot feed a
// shader input of the requested base type.
var ErrIncompatibleAttribute = errors.New("attribute type incompatible with shader input")

// Attribute layout units.
type (
	AttribCount  uint8
	AttribStride uint8
	AttribOffset uint32
)

// AttribKind is the family of a vertex element type.
type AttribKind int

// Element type families
const (
	AttribInt AttribKind = iota
	AttribFloat
	AttribSpecial
)

// IntSubType tells how integer data reaches the shader.
type IntSubType int

// Integer conversions
const (
	IntRaw IntSubType = iota
	IntNormalized
	IntAsFloat
)

// IntSize is the width of an integer element.
type IntSize int

// Integer widths
const (
	U8 IntSize = iota
	U16
	U32
)

// SignFlag tells whether integer data is signed.
type SignFlag int

// Signedness
const (
	Signed SignFlag = iota
	Unsigned
)

// FloatSubType tells how float data reaches the shader.
type FloatSubType int

// Float conversions
const (
	FloatDefault FloatSubType = iota
	FloatPrecision
)

// FloatSize is the width of a float element.
type FloatSize int

// Float widths
const (
	F16 FloatSize = iota
	F32
	F64
)

// AttribType is the element type of a vertex attribute.
type AttribType struct {
	Kind      AttribKind
	IntSub    IntSubType
	IntSize   IntSize
	Sign      SignFlag
	FloatSub  FloatSubType
	FloatSize FloatSize
}

// IntType returns an integer element type.
func IntType(sub IntSubType, size IntSize, sign SignFlag) AttribType {
	return AttribType{Kind: AttribInt, IntSub: sub, IntSize: size, Sign: sign}
}

// FloatType returns a float element type.
func FloatType(sub FloatSubType, size FloatSize) AttribType {
	return AttribType{Kind: AttribFloat, FloatSub: sub, FloatSize: size}
}

// Size returns the byte size of one element.
func (t AttribType) Size() uint8 {
	switch {
	case t.Kind == AttribInt && uint(t.IntSize) < uint(len(intSizes)):
		return intSizes[t.IntSize]
	case t.Kind == AttribFloat && uint(t.FloatSize) < uint(len(floatSizes)):
		return floatSizes[t.FloatSize]
	}
	return 0
}

var (
	intSizes   = [...]uint8{U8: 1, U16: 2, U32: 4}
	floatSizes = [...]uint8{F16: 2, F32: 4, F64: 8}
)

// IsCompatible checks that the element type can be read by a shader input
// of base type bt. Raw integers only feed integer inputs, everything else
// is converted to floats, and only full-precision doubles feed f64 inputs.
func (t AttribType) IsCompatible(bt BaseType) error {
	switch t.Kind {
	case AttribInt:
		if t.IntSub == IntRaw {
			if bt == BaseI32 || (bt == BaseU32 && t.Sign == Unsigned) {
				return nil
			}
			return ErrIncompatibleAttribute
		}
		if bt == BaseF32 {
			return nil
		}
	case AttribFloat:
		if bt == BaseF32 {
			return nil
		}
		if bt == BaseF64 && t.FloatSub == FloatPrecision && t.FloatSize == F64 {
			return nil
		}
	}
	return ErrIncompatibleAttribute
}
