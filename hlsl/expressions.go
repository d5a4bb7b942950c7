// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// components are the swizzle letters for vector components.
const components = "xyzw"

// =============================================================================
// Expression Writing
// =============================================================================

// expr returns the HLSL text of an expression. Baked expressions are
// referenced by their temporary name.
//
//nolint:gocyclo,cyclop,funlen // one case per expression kind
func (w *Writer) expr(handle ir.ExpressionHandle) (string, error) {
	if name, ok := w.baked[handle]; ok {
		return name, nil
	}
	e := w.fn.Expr(handle)

	switch k := e.Kind.(type) {
	case ir.ExprConstant:
		c := w.module.Constant(k.Constant)
		if c == nil {
			return "", NewErrorAt(ErrInvalidModule, k.Constant, "unknown constant")
		}
		return w.constantValue(c, true)

	case ir.ExprUndef:
		return w.zeroValue(e.Type), nil

	case ir.ExprFunctionArgument:
		if int(k.Index) >= len(w.paramNames) {
			return "", NewError(ErrInternalError, "argument %d out of range", k.Index)
		}
		return w.paramNames[k.Index], nil

	case ir.ExprGlobalVariable:
		return w.globalName(k.Variable)

	case ir.ExprLocalVariable:
		name, ok := w.localNames[k.Variable]
		if !ok {
			return "", NewErrorAt(ErrInternalError, k.Variable, "unknown local")
		}
		return name, nil

	case ir.ExprLoad:
		if v, ok := w.storageBuffer(k.Pointer); ok {
			addr, err := w.storageAddress(k.Pointer, v)
			if err != nil {
				return "", err
			}
			return w.storageLoad(addr)
		}
		return w.expr(k.Pointer)

	case ir.ExprAccess:
		if _, ok := w.storageBuffer(handle); ok {
			return "", NewError(ErrUnsupportedFeature, "pointers into storage buffers can only be loaded or stored")
		}
		base, err := w.expr(k.Base)
		if err != nil {
			return "", err
		}
		index, err := w.expr(k.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, index), nil

	case ir.ExprAccessIndex:
		if _, ok := w.storageBuffer(handle); ok {
			return "", NewError(ErrUnsupportedFeature, "pointers into storage buffers can only be loaded or stored")
		}
		return w.accessIndex(k)

	case ir.ExprSwizzle:
		base, err := w.expr(k.Vector)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, c := range k.Pattern {
			if c >= uint32(len(components)) {
				return "", NewError(ErrInvalidModule, "swizzle component %d out of range", c)
			}
			b.WriteByte(components[c])
		}
		return base + "." + b.String(), nil

	case ir.ExprCompose:
		args, err := w.exprList(k.Components)
		if err != nil {
			return "", err
		}
		if w.module.IsComposite(e.Type) {
			return "{ " + strings.Join(args, ", ") + " }", nil
		}
		return fmt.Sprintf("%s(%s)", w.typeName(e.Type), strings.Join(args, ", ")), nil

	case ir.ExprUnary:
		return w.unary(k)

	case ir.ExprBinary:
		return w.binary(e, k)

	case ir.ExprSelect:
		args, err := w.exprList([]ir.ExpressionHandle{k.Condition, k.Accept, k.Reject})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", args[0], args[1], args[2]), nil

	case ir.ExprDerivative:
		return w.derivative(k)

	case ir.ExprRelational:
		arg, err := w.expr(k.Argument)
		if err != nil {
			return "", err
		}
		switch k.Fun {
		case ir.RelationalAll:
			return fmt.Sprintf("all(%s)", arg), nil
		case ir.RelationalAny:
			return fmt.Sprintf("any(%s)", arg), nil
		case ir.RelationalIsNan:
			return fmt.Sprintf("isnan(%s)", arg), nil
		case ir.RelationalIsInf:
			return fmt.Sprintf("isinf(%s)", arg), nil
		}
		return "", NewError(ErrUnsupportedFeature, "relational function %d is not supported", k.Fun)

	case ir.ExprMath:
		return w.math(e, k)

	case ir.ExprAs:
		return w.as(e, k)

	case ir.ExprSampledImage:
		// Samplers travel separately; see textureAndSampler.
		return w.expr(k.Image)

	case ir.ExprImageSample:
		return w.imageSample(k)

	case ir.ExprImageLoad:
		return w.imageLoad(e, k)

	case ir.ExprImageQuery:
		return w.imageQuery(e, k)

	case ir.ExprCallResult:
		return "", NewErrorAt(ErrInternalError, k.Function, "call result used before the call")

	case ir.ExprArrayLength:
		return w.arrayLength(e, k)
	}

	return "", NewError(ErrUnsupportedFeature, "expression %T is not supported", e.Kind)
}

// exprList returns the HLSL text of several expressions.
func (w *Writer) exprList(handles []ir.ExpressionHandle) ([]string, error) {
	out := make([]string, len(handles))
	for i, h := range handles {
		s, err := w.expr(h)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// globalName returns how a global is referenced. Builtins are the statics
// filled by the entry point wrapper.
func (w *Writer) globalName(id uint32) (string, error) {
	if name, ok := w.builtinNames[id]; ok {
		return name, nil
	}
	if name, ok := w.names[id]; ok {
		return name, nil
	}
	if v := w.module.Global(id); v != nil && v.StorageClass == spirv.StorageClassAtomicCounter {
		return "", NewErrorAt(ErrUnsupportedFeature, id, "atomic counters are not supported")
	}
	return "", NewErrorAt(ErrInternalError, id, "unknown global")
}

// accessIndex writes a constant-index access: a member, a component or an
// element depending on the base type.
func (w *Writer) accessIndex(k ir.ExprAccessIndex) (string, error) {
	baseExpr := w.fn.Expr(k.Base)
	t := w.module.Types[baseExpr.Type]
	if t == nil {
		return "", NewError(ErrInvalidModule, "access into an untyped value")
	}

	// Members of builtin blocks are separate statics.
	if t.Kind == ir.TypeStruct && w.module.IsBuiltinBlock(t.ID) {
		name, ok := w.memberStatics[memberKey{t.ID, k.Index}]
		if !ok {
			return "", NewErrorAt(ErrUnsupportedFeature, t.ID, "member %d of builtin block is not supported", k.Index)
		}
		if _, direct := baseExpr.Kind.(ir.ExprGlobalVariable); !direct {
			return "", NewErrorAt(ErrUnsupportedFeature, t.ID, "builtin blocks can only be accessed directly")
		}
		return name, nil
	}

	base, err := w.expr(k.Base)
	if err != nil {
		return "", err
	}
	switch t.Kind {
	case ir.TypeStruct:
		name, ok := w.memberNames[memberKey{t.ID, k.Index}]
		if !ok {
			return "", NewErrorAt(ErrInvalidModule, t.ID, "member %d out of range", k.Index)
		}
		return base + "." + name, nil
	case ir.TypeVector:
		if k.Index >= uint32(len(components)) {
			return "", NewError(ErrInvalidModule, "vector component %d out of range", k.Index)
		}
		return base + "." + string(components[k.Index]), nil
	}
	return fmt.Sprintf("%s[%d]", base, k.Index), nil
}

// isVector reports whether a type is a vector.
func (w *Writer) isVector(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && t.Kind == ir.TypeVector
}

// isScalar reports whether a type is a bool, integer or float.
func (w *Writer) isScalar(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && (t.Kind == ir.TypeBool || t.Kind == ir.TypeInt || t.Kind == ir.TypeFloat)
}

// isMatrix reports whether a type is a matrix.
func (w *Writer) isMatrix(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && t.Kind == ir.TypeMatrix
}

// isFloat reports whether the scalar type of id is a float.
func (w *Writer) isFloat(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeFloat
}

// isUnsigned reports whether the scalar type of id is an unsigned integer.
func (w *Writer) isUnsigned(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeInt && !s.Signed
}

// isSigned reports whether the scalar type of id is a signed integer.
func (w *Writer) isSigned(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeInt && s.Signed
}

// castOperand converts an integer operand to the signedness of want.
func (w *Writer) castOperand(h ir.ExpressionHandle, want uint32) (string, error) {
	s, err := w.expr(h)
	if err != nil {
		return "", err
	}
	have := w.module.Scalar(w.fn.Expr(h).Type)
	target := w.module.Scalar(want)
	if have == nil || target == nil || have.Kind != ir.TypeInt || target.Kind != ir.TypeInt {
		return s, nil
	}
	if have.Signed == target.Signed {
		return s, nil
	}
	n := uint32(1)
	if t := w.module.Types[w.fn.Expr(h).Type]; t != nil && t.Kind == ir.TypeVector {
		n = t.Count
	}
	return fmt.Sprintf("%s(%s)", w.vectorName(target, n), s), nil
}

// =============================================================================
// Operators
// =============================================================================

func (w *Writer) unary(k ir.ExprUnary) (string, error) {
	operand, err := w.expr(k.Expr)
	if err != nil {
		return "", err
	}
	switch k.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("(-%s)", operand), nil
	case ir.UnaryLogicalNot:
		return fmt.Sprintf("(!%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("(~%s)", operand), nil
	}
	return "", NewError(ErrUnsupportedFeature, "unary operator %d is not supported", k.Op)
}

// binaryOperators are the HLSL infix operators.
var binaryOperators = map[ir.BinaryOperator]string{
	ir.BinaryAdd:          "+",
	ir.BinarySubtract:     "-",
	ir.BinaryMultiply:     "*",
	ir.BinaryDivide:       "/",
	ir.BinaryModulo:       "%",
	ir.BinaryEqual:        "==",
	ir.BinaryNotEqual:     "!=",
	ir.BinaryLess:         "<",
	ir.BinaryLessEqual:    "<=",
	ir.BinaryGreater:      ">",
	ir.BinaryGreaterEqual: ">=",
	ir.BinaryAnd:          "&",
	ir.BinaryExclusiveOr:  "^",
	ir.BinaryInclusiveOr:  "|",
	ir.BinaryLogicalAnd:   "&&",
	ir.BinaryLogicalOr:    "||",
	ir.BinaryShiftLeft:    "<<",
	ir.BinaryShiftRight:   ">>",
}

func (w *Writer) binary(e *ir.Expression, k ir.ExprBinary) (string, error) {
	leftType := w.fn.Expr(k.Left).Type
	rightType := w.fn.Expr(k.Right).Type

	// Comparisons take the signedness of the left operand; everything else
	// the signedness of the result.
	want := e.Type
	if k.Op.IsComparison() {
		want = leftType
	}
	left, err := w.castOperand(k.Left, want)
	if err != nil {
		return "", err
	}
	var right string
	if k.Op == ir.BinaryShiftLeft || k.Op == ir.BinaryShiftRight {
		right, err = w.expr(k.Right)
	} else {
		right, err = w.castOperand(k.Right, want)
	}
	if err != nil {
		return "", err
	}

	switch {
	case k.Op == ir.BinaryMultiply && (w.isMatrix(leftType) || w.isMatrix(rightType)) &&
		!w.isScalar(leftType) && !w.isScalar(rightType):
		// Matrices are declared transposed, so products swap operands.
		return fmt.Sprintf("mul(%s, %s)", right, left), nil

	case (k.Op == ir.BinaryLogicalAnd || k.Op == ir.BinaryLogicalOr) && w.isVector(leftType):
		n := w.module.Types[leftType].Count
		op := "&"
		if k.Op == ir.BinaryLogicalOr {
			op = "|"
		}
		return fmt.Sprintf("bool%d(uint%d(%s) %s uint%d(%s))", n, n, left, op, n, right), nil

	case k.Op == ir.BinaryModulo && w.isFloat(e.Type):
		return fmt.Sprintf("fmod(%s, %s)", left, right), nil
	}

	op, ok := binaryOperators[k.Op]
	if !ok {
		return "", NewError(ErrUnsupportedFeature, "binary operator %d is not supported", k.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

func (w *Writer) derivative(k ir.ExprDerivative) (string, error) {
	arg, err := w.expr(k.Expr)
	if err != nil {
		return "", err
	}
	var suffix string
	switch k.Control {
	case ir.DerivativeFine:
		suffix = "_fine"
	case ir.DerivativeCoarse:
		suffix = "_coarse"
	}
	if suffix != "" {
		w.usedFeatures |= FeatureFineDerivatives
	}
	switch k.Axis {
	case ir.DerivativeX:
		return fmt.Sprintf("ddx%s(%s)", suffix, arg), nil
	case ir.DerivativeY:
		return fmt.Sprintf("ddy%s(%s)", suffix, arg), nil
	}
	if suffix == "" {
		return fmt.Sprintf("fwidth(%s)", arg), nil
	}
	return fmt.Sprintf("(abs(ddx%s(%s)) + abs(ddy%s(%s)))", suffix, arg, suffix, arg), nil
}

// =============================================================================
// Math Functions
// =============================================================================

// mathFunctions maps math functions to HLSL intrinsics.
var mathFunctions = map[ir.MathFunction]string{
	ir.MathAbs:         "abs",
	ir.MathMin:         "min",
	ir.MathMax:         "max",
	ir.MathClamp:       "clamp",
	ir.MathCos:         "cos",
	ir.MathCosh:        "cosh",
	ir.MathSin:         "sin",
	ir.MathSinh:        "sinh",
	ir.MathTan:         "tan",
	ir.MathTanh:        "tanh",
	ir.MathAcos:        "acos",
	ir.MathAsin:        "asin",
	ir.MathAtan:        "atan",
	ir.MathAtan2:       "atan2",
	ir.MathRadians:     "radians",
	ir.MathDegrees:     "degrees",
	ir.MathCeil:        "ceil",
	ir.MathFloor:       "floor",
	ir.MathRound:       "round",
	ir.MathRoundEven:   "round",
	ir.MathFract:       "frac",
	ir.MathTrunc:       "trunc",
	ir.MathExp:         "exp",
	ir.MathExp2:        "exp2",
	ir.MathLog:         "log",
	ir.MathLog2:        "log2",
	ir.MathPow:         "pow",
	ir.MathDot:         "dot",
	ir.MathCross:       "cross",
	ir.MathDistance:    "distance",
	ir.MathLength:      "length",
	ir.MathNormalize:   "normalize",
	ir.MathFaceForward: "faceforward",
	ir.MathReflect:     "reflect",
	ir.MathRefract:     "refract",
	ir.MathSign:        "sign",
	ir.MathFma:         "mad",
	ir.MathMix:         "lerp",
	ir.MathStep:        "step",
	ir.MathSmoothStep:  "smoothstep",
	ir.MathSqrt:        "sqrt",
	ir.MathInverseSqrt: "rsqrt",
	ir.MathTranspose:   "transpose",
	ir.MathDeterminant: "determinant",
	ir.MathLdexp:       "ldexp",
	ir.MathFindLSB:     "firstbitlow",
	ir.MathFindMSB:     "firstbithigh",
	ir.MathBitCount:    "countbits",
	ir.MathBitReverse:  "reversebits",
}

func (w *Writer) math(e *ir.Expression, k ir.ExprMath) (string, error) {
	args, err := w.exprList(k.Args)
	if err != nil {
		return "", err
	}
	one := "1.0"
	if s := w.module.Scalar(e.Type); s != nil && s.Width == 64 {
		one = "1.0L"
	}

	switch k.Fun {
	case ir.MathFMod:
		x, y := args[0], args[1]
		return fmt.Sprintf("(%s - %s * floor(%s / %s))", x, y, x, y), nil
	case ir.MathAsinh:
		return fmt.Sprintf("log(%s + sqrt(%s * %s + %s))", args[0], args[0], args[0], one), nil
	case ir.MathAcosh:
		return fmt.Sprintf("log(%s + sqrt(%s * %s - %s))", args[0], args[0], args[0], one), nil
	case ir.MathAtanh:
		return fmt.Sprintf("(0.5 * log((%s + %s) / (%s - %s)))", one, args[0], one, args[0]), nil
	case ir.MathOuter, ir.MathInverse:
		return "", NewError(ErrUnsupportedFeature, "math function %d has no HLSL intrinsic", k.Fun)
	}

	name, ok := mathFunctions[k.Fun]
	if !ok {
		return "", NewError(ErrUnsupportedFeature, "math function %d is not supported", k.Fun)
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	switch k.Fun {
	case ir.MathSign:
		// sign returns int whatever the operand type.
		if !w.isSigned(e.Type) {
			return fmt.Sprintf("%s(%s)", w.typeName(e.Type), call), nil
		}
	case ir.MathFindLSB, ir.MathFindMSB, ir.MathBitCount, ir.MathBitReverse:
		if w.isSigned(e.Type) {
			return fmt.Sprintf("%s(%s)", w.typeName(e.Type), call), nil
		}
	}
	return call, nil
}

// as writes a conversion or a bitcast to the expression type.
func (w *Writer) as(e *ir.Expression, k ir.ExprAs) (string, error) {
	arg, err := w.expr(k.Expr)
	if err != nil {
		return "", err
	}
	target := w.typeName(e.Type)
	if !k.Bitcast {
		return fmt.Sprintf("%s(%s)", target, arg), nil
	}

	from := w.module.Scalar(w.fn.Expr(k.Expr).Type)
	to := w.module.Scalar(e.Type)
	if from == nil || to == nil {
		return "", NewError(ErrUnsupportedType, "bitcast of a non-numeric value")
	}
	switch {
	case from.Kind == to.Kind && from.Signed == to.Signed:
		return arg, nil
	case to.Kind == ir.TypeFloat:
		return fmt.Sprintf("asfloat(%s)", arg), nil
	case to.Kind == ir.TypeInt && to.Signed:
		return fmt.Sprintf("asint(%s)", arg), nil
	case to.Kind == ir.TypeInt:
		return fmt.Sprintf("asuint(%s)", arg), nil
	}
	return fmt.Sprintf("%s(%s)", target, arg), nil
}

// =============================================================================
// Images
// =============================================================================

// imageType returns the image type behind an image or sampled image expression.
func (w *Writer) imageType(h ir.ExpressionHandle) *ir.Type {
	t := w.module.Types[w.fn.Expr(h).Type]
	if t != nil && t.Kind == ir.TypeSampledImage {
		t = w.module.Types[t.Elem]
	}
	if t == nil || t.Kind != ir.TypeImage {
		return nil
	}
	return t
}

// textureAndSampler splits a sampled image expression into the texture and
// the sampler it is sampled with.
func (w *Writer) textureAndSampler(h ir.ExpressionHandle) (string, string, error) {
	if si, ok := w.fn.Expr(h).Kind.(ir.ExprSampledImage); ok {
		tex, err := w.expr(si.Image)
		if err != nil {
			return "", "", err
		}
		sampler, err := w.expr(si.Sampler)
		return tex, sampler, err
	}
	tex, err := w.expr(h)
	if err != nil {
		return "", "", err
	}
	sampler, err := w.combinedSampler(h)
	return tex, sampler, err
}

// combinedSampler returns the sampler declared alongside a combined image.
func (w *Writer) combinedSampler(h ir.ExpressionHandle) (string, error) {
	switch k := w.fn.Expr(h).Kind.(type) {
	case ir.ExprLoad:
		return w.combinedSampler(k.Pointer)
	case ir.ExprAccess:
		base, err := w.combinedSampler(k.Base)
		if err != nil {
			return "", err
		}
		index, err := w.expr(k.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, index), nil
	case ir.ExprAccessIndex:
		base, err := w.combinedSampler(k.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%d]", base, k.Index), nil
	case ir.ExprGlobalVariable:
		if name, ok := w.samplerNames[k.Variable]; ok {
			return name, nil
		}
	case ir.ExprFunctionArgument:
		if name, ok := w.paramSamplers[k.Index]; ok {
			return name, nil
		}
	}
	return "", NewError(ErrUnsupportedFeature, "cannot find the sampler of a combined image")
}

// projectedCoordinate divides a projective coordinate by its last component.
func (w *Writer) projectedCoordinate(h ir.ExpressionHandle, coord string) (string, string) {
	n := uint32(1)
	if t := w.module.Types[w.fn.Expr(h).Type]; t != nil && t.Kind == ir.TypeVector {
		n = t.Count
	}
	if n < 2 {
		return coord, ""
	}
	divisor := fmt.Sprintf("%s.%c", coord, components[n-1])
	return fmt.Sprintf("(%s.%s / %s)", coord, components[:n-1], divisor), divisor
}

// gatherMethods are the Texture.Gather variants by component.
var gatherMethods = [4]string{"GatherRed", "GatherGreen", "GatherBlue", "GatherAlpha"}

// imageSample writes a texture sampling or gather method call.
//
//nolint:gocyclo,cyclop,funlen // one branch per image operand
func (w *Writer) imageSample(k ir.ExprImageSample) (string, error) {
	tex, sampler, err := w.textureAndSampler(k.SampledImage)
	if err != nil {
		return "", err
	}
	coord, err := w.expr(k.Coordinate)
	if err != nil {
		return "", err
	}
	var divisor string
	if k.Project {
		coord, divisor = w.projectedCoordinate(k.Coordinate, coord)
	}
	var ref string
	if k.DepthRef != nil {
		if ref, err = w.expr(*k.DepthRef); err != nil {
			return "", err
		}
		if divisor != "" {
			ref = fmt.Sprintf("(%s / %s)", ref, divisor)
		}
	}
	var offset string
	if k.Offset != nil {
		if offset, err = w.expr(*k.Offset); err != nil {
			return "", err
		}
	}

	args := []string{sampler, coord}
	var method string

	switch {
	case k.Gather != nil && ref != "":
		method = "GatherCmp"
		args = append(args, ref)

	case k.Gather != nil:
		comp, ok := w.fn.Expr(*k.Gather).Kind.(ir.ExprConstant)
		c := w.module.Constant(comp.Constant)
		if !ok || c == nil || c.Uint32() > 3 {
			return "", NewError(ErrUnsupportedFeature, "gather component must be a constant between 0 and 3")
		}
		method = gatherMethods[c.Uint32()]

	case ref != "":
		switch k.Level.(type) {
		case nil, ir.SampleLevelAuto:
			method = "SampleCmp"
		case ir.SampleLevelExact:
			method = "SampleCmpLevelZero"
		default:
			return "", NewError(ErrUnsupportedFeature, "depth comparison with bias or gradients is not supported")
		}
		args = append(args, ref)

	default:
		switch level := k.Level.(type) {
		case ir.SampleLevelExact:
			method = "SampleLevel"
			lod, err := w.expr(level.Level)
			if err != nil {
				return "", err
			}
			args = append(args, lod)
		case ir.SampleLevelBias:
			method = "SampleBias"
			bias, err := w.expr(level.Bias)
			if err != nil {
				return "", err
			}
			args = append(args, bias)
		case ir.SampleLevelGradient:
			method = "SampleGrad"
			grads, err := w.exprList([]ir.ExpressionHandle{level.X, level.Y})
			if err != nil {
				return "", err
			}
			args = append(args, grads...)
		default:
			method = "Sample"
		}
	}

	if offset != "" {
		args = append(args, offset)
	}
	return fmt.Sprintf("%s.%s(%s)", tex, method, strings.Join(args, ", ")), nil
}

// resultSwizzle widens or narrows a texel with n components to the width
// of typ, repeating the last component as needed.
func (w *Writer) resultSwizzle(value string, n uint32, typ uint32) string {
	want := uint32(1)
	if t := w.module.Types[typ]; t != nil && t.Kind == ir.TypeVector {
		want = t.Count
	}
	if want == n {
		return value
	}
	var b strings.Builder
	for i := uint32(0); i < want; i++ {
		b.WriteByte(components[min(i, n-1)])
	}
	return value + "." + b.String()
}

// imageLoad writes a texel fetch or a storage image read.
func (w *Writer) imageLoad(e *ir.Expression, k ir.ExprImageLoad) (string, error) {
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}
	t := w.imageType(k.Image)
	if t == nil {
		return "", NewError(ErrInvalidModule, "image load from a non-image value")
	}
	if t.Image.Dim == spirv.DimSubpassData {
		return "", NewErrorAt(ErrUnsupportedFeature, t.ID, "subpass inputs are not supported")
	}
	coord, err := w.expr(k.Coordinate)
	if err != nil {
		return "", err
	}

	if t.Image.Sampled == 2 {
		n, _ := formatComponents(t.Image.Format)
		return w.resultSwizzle(fmt.Sprintf("%s[%s]", image, coord), n, e.Type), nil
	}
	if t.Image.Dim == spirv.DimBuffer {
		return w.resultSwizzle(fmt.Sprintf("%s.Load(%s)", image, coord), 4, e.Type), nil
	}

	var value string
	switch {
	case k.Sample != nil:
		sample, err := w.expr(*k.Sample)
		if err != nil {
			return "", err
		}
		value = fmt.Sprintf("%s.Load(%s, %s)", image, coord, sample)
	default:
		lod := "0"
		if k.Level != nil {
			if lod, err = w.expr(*k.Level); err != nil {
				return "", err
			}
		}
		n := uint32(1)
		if ct := w.module.Types[w.fn.Expr(k.Coordinate).Type]; ct != nil && ct.Kind == ir.TypeVector {
			n = ct.Count
		}
		value = fmt.Sprintf("%s.Load(int%d(%s, %s))", image, n+1, coord, lod)
	}
	return w.resultSwizzle(value, 4, e.Type), nil
}

// imageSizeArgs returns the GetDimensions arguments of an image type, the
// components of the returned uint4 holding its size, and whether the
// method takes a mip level.
func imageSizeArgs(t *ir.Type) (outs []string, size string, mipmapped bool) {
	img := t.Image
	storage := img.Sampled == 2
	mipmapped = !storage && !img.Multisampled && img.Dim != spirv.DimBuffer && img.Dim != spirv.DimSubpassData

	switch img.Dim {
	case spirv.Dim1D, spirv.DimBuffer:
		outs, size = []string{"ret.x"}, "x"
	case spirv.Dim3D:
		outs, size = []string{"ret.x", "ret.y", "ret.z"}, "xyz"
	default:
		outs, size = []string{"ret.x", "ret.y"}, "xy"
	}
	if img.Arrayed && img.Dim != spirv.Dim3D && img.Dim != spirv.DimBuffer {
		outs = append(outs, fmt.Sprintf("ret.%c", components[len(size)]))
		size += string(components[len(size)])
	}
	if mipmapped || img.Multisampled {
		outs = append(outs, "ret.w")
	}
	return outs, size, mipmapped
}

// imageQuery writes a size, level count or sample count query through the
// spvImageSize helper, which packs all dimensions into a uint4.
func (w *Writer) imageQuery(e *ir.Expression, k ir.ExprImageQuery) (string, error) {
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}
	t := w.imageType(k.Image)
	if t == nil {
		return "", NewError(ErrInvalidModule, "image query on a non-image value")
	}

	texType := w.imageTypeName(t)
	outs, size, mipmapped := imageSizeArgs(t)
	dims := strings.Join(outs, ", ")
	if mipmapped {
		dims = "level, " + dims
	}
	w.requireHelper(ImageSizeFunction+texType, ImageSizeFunction, fmt.Sprintf(`uint4 %s(%s tex, uint level)
{
    uint4 ret = 0u;
    tex.GetDimensions(%s);
    return ret;
}
`, ImageSizeFunction, texType, dims))

	level := "0u"
	if k.Level != nil {
		lod, err := w.expr(*k.Level)
		if err != nil {
			return "", err
		}
		level = fmt.Sprintf("uint(%s)", lod)
	}
	call := fmt.Sprintf("%s(%s, %s)", ImageSizeFunction, image, level)

	var swizzle string
	switch k.Query {
	case ir.ImageQuerySize:
		swizzle = size
		if rt := w.module.Types[e.Type]; rt != nil && rt.Kind == ir.TypeVector && int(rt.Count) < len(swizzle) {
			swizzle = swizzle[:rt.Count]
		} else if rt != nil && rt.Kind != ir.TypeVector {
			swizzle = swizzle[:1]
		}
	case ir.ImageQueryNumLevels, ir.ImageQueryNumSamples:
		swizzle = "w"
	default:
		return "", NewError(ErrUnsupportedFeature, "image query %d is not supported", k.Query)
	}
	value := call + "." + swizzle
	if !w.isUnsigned(e.Type) {
		return fmt.Sprintf("%s(%s)", w.typeName(e.Type), value), nil
	}
	return value, nil
}
