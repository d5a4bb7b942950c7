package msl

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

// expr returns the MSL text of an expression. Baked expressions are
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
			return "", fmt.Errorf("constant %%%d is not defined", k.Constant)
		}
		return w.constantValue(c, true)

	case ir.ExprUndef:
		return w.zeroValue(e.Type), nil

	case ir.ExprFunctionArgument:
		if int(k.Index) >= len(w.paramNames) {
			return "", fmt.Errorf("argument %d out of range", k.Index)
		}
		return w.paramNames[k.Index], nil

	case ir.ExprGlobalVariable:
		return w.globalName(k.Variable)

	case ir.ExprLocalVariable:
		name, ok := w.localNames[k.Variable]
		if !ok {
			return "", fmt.Errorf("local %%%d is not declared", k.Variable)
		}
		return name, nil

	case ir.ExprLoad:
		value, err := w.expr(k.Pointer)
		if err != nil {
			return "", err
		}
		if w.isRowMajorPlace(k.Pointer) {
			return fmt.Sprintf("metal::transpose(%s)", value), nil
		}
		return value, nil

	case ir.ExprAccess:
		if w.isRowMajorPlace(k.Base) {
			return "", fmt.Errorf("columns of row-major matrices cannot be accessed in place")
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
		return w.accessIndex(k)

	case ir.ExprSwizzle:
		base, err := w.expr(k.Vector)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, c := range k.Pattern {
			if c >= uint32(len(components)) {
				return "", fmt.Errorf("swizzle component %d out of range", c)
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
			return fmt.Sprintf("%s{ %s }", w.typeName(e.Type), strings.Join(args, ", ")), nil
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
		if w.isVector(w.fn.Expr(k.Condition).Type) {
			return fmt.Sprintf("metal::select(%s, %s, %s)", args[2], args[1], args[0]), nil
		}
		return fmt.Sprintf("(%s ? %s : %s)", args[0], args[1], args[2]), nil

	case ir.ExprDerivative:
		arg, err := w.expr(k.Expr)
		if err != nil {
			return "", err
		}
		// Metal has no control over derivative precision.
		switch k.Axis {
		case ir.DerivativeX:
			return fmt.Sprintf("metal::dfdx(%s)", arg), nil
		case ir.DerivativeY:
			return fmt.Sprintf("metal::dfdy(%s)", arg), nil
		}
		return fmt.Sprintf("metal::fwidth(%s)", arg), nil

	case ir.ExprRelational:
		arg, err := w.expr(k.Argument)
		if err != nil {
			return "", err
		}
		switch k.Fun {
		case ir.RelationalAll:
			return fmt.Sprintf("metal::all(%s)", arg), nil
		case ir.RelationalAny:
			return fmt.Sprintf("metal::any(%s)", arg), nil
		case ir.RelationalIsNan:
			return fmt.Sprintf("metal::isnan(%s)", arg), nil
		case ir.RelationalIsInf:
			return fmt.Sprintf("metal::isinf(%s)", arg), nil
		}
		return "", fmt.Errorf("relational function %d is not supported", k.Fun)

	case ir.ExprMath:
		return w.math(e, k)

	case ir.ExprAs:
		arg, err := w.expr(k.Expr)
		if err != nil {
			return "", err
		}
		if k.Bitcast {
			return fmt.Sprintf("as_type<%s>(%s)", w.typeName(e.Type), arg), nil
		}
		return fmt.Sprintf("%s(%s)", w.typeName(e.Type), arg), nil

	case ir.ExprSampledImage:
		// Samplers travel separately; see textureAndSampler.
		return w.expr(k.Image)

	case ir.ExprImageSample:
		return w.imageSample(e, k)

	case ir.ExprImageLoad:
		return w.imageLoad(e, k)

	case ir.ExprImageQuery:
		return w.imageQuery(e, k)

	case ir.ExprCallResult:
		return "", fmt.Errorf("result of %%%d used before the call", k.Function)

	case ir.ExprArrayLength:
		return w.arrayLength(e, k)
	}

	return "", fmt.Errorf("expression %T is not supported", e.Kind)
}

// exprList returns the MSL text of several expressions.
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

// globalName returns how a global is referenced: a resource parameter, a
// member of the stage structs or an entry point local.
func (w *Writer) globalName(id uint32) (string, error) {
	if name, ok := w.globalRefs[id]; ok {
		return name, nil
	}
	if v := w.module.Global(id); v != nil && v.StorageClass == spirv.StorageClassAtomicCounter {
		return "", fmt.Errorf("global %%%d: atomic counters are not supported", id)
	}
	if v := w.module.Global(id); v != nil && w.module.IsBuiltinBlock(w.module.BaseType(v.Type)) {
		return "", fmt.Errorf("global %%%d: builtin blocks can only be accessed by member", id)
	}
	return "", fmt.Errorf("global %%%d is not declared", id)
}

// accessIndex writes a constant-index access: a member, a component or an
// element depending on the base type.
func (w *Writer) accessIndex(k ir.ExprAccessIndex) (string, error) {
	baseExpr := w.fn.Expr(k.Base)
	t := w.module.Types[baseExpr.Type]
	if t == nil {
		return "", fmt.Errorf("access into an untyped value")
	}

	if t.Kind == ir.TypeStruct && w.module.IsBuiltinBlock(t.ID) {
		ref, ok := w.memberRefs[memberKey{t.ID, k.Index}]
		if !ok {
			return "", fmt.Errorf("member %d of builtin block %%%d is not supported", k.Index, t.ID)
		}
		if _, direct := baseExpr.Kind.(ir.ExprGlobalVariable); !direct {
			return "", fmt.Errorf("builtin blocks can only be accessed directly")
		}
		return ref, nil
	}
	if w.isRowMajorPlace(k.Base) {
		return "", fmt.Errorf("columns of row-major matrices cannot be accessed in place")
	}

	base, err := w.expr(k.Base)
	if err != nil {
		return "", err
	}
	switch t.Kind {
	case ir.TypeStruct:
		key := memberKey{t.ID, k.Index}
		name, ok := w.memberNames[key]
		if !ok {
			return "", fmt.Errorf("member %d of %%%d out of range", k.Index, t.ID)
		}
		if w.rowMajor[key] && !w.isPointer(k.Base) {
			return fmt.Sprintf("metal::transpose(%s.%s)", base, name), nil
		}
		return base + "." + name, nil
	case ir.TypeVector:
		if k.Index >= uint32(len(components)) {
			return "", fmt.Errorf("vector component %d out of range", k.Index)
		}
		return base + "." + string(components[k.Index]), nil
	}
	return fmt.Sprintf("%s[%d]", base, k.Index), nil
}

// isPointer reports whether an expression is a place rather than a value.
func (w *Writer) isPointer(h ir.ExpressionHandle) bool {
	switch k := w.fn.Expr(h).Kind.(type) {
	case ir.ExprGlobalVariable, ir.ExprLocalVariable:
		return true
	case ir.ExprAccess:
		return w.isPointer(k.Base)
	case ir.ExprAccessIndex:
		return w.isPointer(k.Base)
	case ir.ExprFunctionArgument:
		if int(k.Index) < len(w.fn.Function.Params) {
			t := w.module.Types[w.fn.Function.Params[k.Index].Type]
			return t != nil && t.Kind == ir.TypePointer
		}
	}
	return false
}

// isRowMajorPlace reports whether a pointer addresses a matrix member that
// is declared transposed.
func (w *Writer) isRowMajorPlace(h ir.ExpressionHandle) bool {
	k, ok := w.fn.Expr(h).Kind.(ir.ExprAccessIndex)
	if !ok {
		return false
	}
	base := w.fn.Expr(k.Base)
	t := w.module.Types[base.Type]
	return t != nil && t.Kind == ir.TypeStruct && w.rowMajor[memberKey{t.ID, k.Index}] && w.isPointer(k.Base)
}

// isVector reports whether a type is a vector.
func (w *Writer) isVector(id uint32) bool {
	t := w.module.Types[id]
	return t != nil && t.Kind == ir.TypeVector
}

// isFloat reports whether the scalar type of id is a float.
func (w *Writer) isFloat(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeFloat
}

// isSigned reports whether the scalar type of id is a signed integer.
func (w *Writer) isSigned(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeInt && s.Signed
}

// componentCount returns the number of components of a vector, or 1.
func (w *Writer) componentCount(id uint32) uint32 {
	if t := w.module.Types[id]; t != nil && t.Kind == ir.TypeVector {
		return t.Count
	}
	return 1
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
	return fmt.Sprintf("%s(%s)", w.vectorName(target, w.componentCount(w.fn.Expr(h).Type)), s), nil
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
	return "", fmt.Errorf("unary operator %d is not supported", k.Op)
}

// binaryOperators are the MSL infix operators.
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

// binary writes a binary operation. Matrices are column-major in both
// SPIR-V and Metal, so products keep their operand order.
func (w *Writer) binary(e *ir.Expression, k ir.ExprBinary) (string, error) {
	leftType := w.fn.Expr(k.Left).Type

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
	case (k.Op == ir.BinaryLogicalAnd || k.Op == ir.BinaryLogicalOr) && w.isVector(leftType):
		n := w.module.Types[leftType].Count
		op := "&"
		if k.Op == ir.BinaryLogicalOr {
			op = "|"
		}
		return fmt.Sprintf("metal::bool%d(metal::uint%d(%s) %s metal::uint%d(%s))", n, n, left, op, n, right), nil

	case k.Op == ir.BinaryModulo && w.isFloat(e.Type):
		return fmt.Sprintf("metal::fmod(%s, %s)", left, right), nil
	}

	op, ok := binaryOperators[k.Op]
	if !ok {
		return "", fmt.Errorf("binary operator %d is not supported", k.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// =============================================================================
// Math Functions
// =============================================================================

// mathFunctions maps math functions to Metal standard library functions.
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
	ir.MathAsinh:       "asinh",
	ir.MathAcosh:       "acosh",
	ir.MathAtanh:       "atanh",
	ir.MathCeil:        "ceil",
	ir.MathFloor:       "floor",
	ir.MathRound:       "round",
	ir.MathRoundEven:   "rint",
	ir.MathFract:       "fract",
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
	ir.MathFma:         "fma",
	ir.MathMix:         "mix",
	ir.MathStep:        "step",
	ir.MathSmoothStep:  "smoothstep",
	ir.MathSqrt:        "sqrt",
	ir.MathInverseSqrt: "rsqrt",
	ir.MathTranspose:   "transpose",
	ir.MathDeterminant: "determinant",
	ir.MathLdexp:       "ldexp",
	ir.MathBitCount:    "popcount",
	ir.MathBitReverse:  "reverse_bits",
}

const (
	findLSBHelper = `template<typename T>
inline T spvFindLSB(T x)
{
    return metal::select(metal::ctz(x), T(-1), x == T(0));
}
`
	findUMSBHelper = `template<typename T>
inline T spvFindUMSB(T x)
{
    return metal::select(metal::clz(T(0)) - (metal::clz(x) + T(1)), T(-1), x == T(0));
}
`
	findSMSBHelper = `template<typename T>
inline T spvFindSMSB(T x)
{
    T v = metal::select(x, T(-1) - x, x < T(0));
    return metal::select(metal::clz(T(0)) - (metal::clz(v) + T(1)), T(-1), v == T(0));
}
`
	signHelper = `template<typename T>
inline T spvSSign(T x)
{
    return metal::select(metal::select(metal::select(x, T(0), x == T(0)), T(1), x > T(0)), T(-1), x < T(0));
}
`
)

//nolint:gocyclo,cyclop // one case per special function
func (w *Writer) math(e *ir.Expression, k ir.ExprMath) (string, error) {
	args, err := w.exprList(k.Args)
	if err != nil {
		return "", err
	}

	switch k.Fun {
	case ir.MathFMod:
		x, y := args[0], args[1]
		return fmt.Sprintf("(%s - %s * metal::floor(%s / %s))", x, y, x, y), nil
	case ir.MathRadians:
		return fmt.Sprintf("(%s * 0.01745329251)", args[0]), nil
	case ir.MathDegrees:
		return fmt.Sprintf("(%s * 57.2957795131)", args[0]), nil
	case ir.MathSign:
		if w.isSigned(e.Type) {
			w.requireHelper("spvSSign", signHelper)
			return fmt.Sprintf("spvSSign(%s)", args[0]), nil
		}
		return fmt.Sprintf("metal::sign(%s)", args[0]), nil
	case ir.MathFindLSB:
		w.requireHelper("spvFindLSB", findLSBHelper)
		return fmt.Sprintf("spvFindLSB(%s)", args[0]), nil
	case ir.MathFindMSB:
		if w.isSigned(e.Type) {
			w.requireHelper("spvFindSMSB", findSMSBHelper)
			return fmt.Sprintf("spvFindSMSB(%s)", args[0]), nil
		}
		w.requireHelper("spvFindUMSB", findUMSBHelper)
		return fmt.Sprintf("spvFindUMSB(%s)", args[0]), nil
	case ir.MathOuter, ir.MathInverse:
		return "", fmt.Errorf("math function %d has no Metal equivalent", k.Fun)
	}

	name, ok := mathFunctions[k.Fun]
	if !ok {
		return "", fmt.Errorf("math function %d is not supported", k.Fun)
	}
	return fmt.Sprintf("metal::%s(%s)", name, strings.Join(args, ", ")), nil
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

// isDepthImage reports whether an image expression comes from a texture
// declared as a depth texture.
func (w *Writer) isDepthImage(h ir.ExpressionHandle) bool {
	if si, ok := w.fn.Expr(h).Kind.(ir.ExprSampledImage); ok {
		h = si.Image
	}
	if id, ok := opaqueRoot(w.fn, h); ok {
		return w.depthImages[id]
	}
	if index, ok := argumentRoot(w.fn, h); ok {
		return w.depthParams[paramKey{w.fn.Function.ID, index}]
	}
	return false
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
	return "", fmt.Errorf("cannot find the sampler of a combined image")
}

// splitCoordinate separates the array layer from the coordinate of an
// arrayed image. size is the number of coordinate components without the
// layer. Integer coordinates are converted to uint for reads.
func (w *Writer) splitCoordinate(t *ir.Type, h ir.ExpressionHandle, coord string, integer bool) []string {
	size := coordinateSize(t.Image.Dim)
	n := w.componentCount(w.fn.Expr(h).Type)
	convert := func(s string, count uint32) string {
		if !integer {
			return s
		}
		if count == 1 {
			return fmt.Sprintf("uint(%s)", s)
		}
		return fmt.Sprintf("metal::uint%d(%s)", count, s)
	}

	if !t.Image.Arrayed || n <= size {
		return []string{convert(coord, n)}
	}
	xy := fmt.Sprintf("%s.%s", coord, components[:size])
	layer := fmt.Sprintf("%s.%c", coord, components[size])
	if !integer {
		layer = fmt.Sprintf("uint(metal::rint(%s))", layer)
	} else {
		layer = fmt.Sprintf("uint(%s)", layer)
	}
	return []string{convert(xy, size), layer}
}

// coordinateSize returns the number of coordinate components of an image
// dimension, without the array layer.
func coordinateSize(dim spirv.Dim) uint32 {
	switch dim {
	case spirv.Dim1D, spirv.DimBuffer:
		return 1
	case spirv.Dim3D, spirv.DimCube:
		return 3
	}
	return 2
}

// projectedCoordinate divides a projective coordinate by its last component.
func (w *Writer) projectedCoordinate(h ir.ExpressionHandle, coord string) (string, string) {
	n := w.componentCount(w.fn.Expr(h).Type)
	if n < 2 {
		return coord, ""
	}
	divisor := fmt.Sprintf("%s.%c", coord, components[n-1])
	return fmt.Sprintf("(%s.%s / %s)", coord, components[:n-1], divisor), divisor
}

// gradientFunction returns the gradient wrapper of an image dimension.
func gradientFunction(dim spirv.Dim) string {
	switch dim {
	case spirv.Dim3D:
		return "metal::gradient3d"
	case spirv.DimCube:
		return "metal::gradientcube"
	}
	return "metal::gradient2d"
}

// imageSample writes a texture sample, sample_compare, gather or
// gather_compare call.
//
//nolint:gocognit,gocyclo,cyclop,funlen // one branch per image operand
func (w *Writer) imageSample(e *ir.Expression, k ir.ExprImageSample) (string, error) {
	t := w.imageType(k.SampledImage)
	if t == nil {
		return "", fmt.Errorf("sampling a non-image value")
	}
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
	args := []string{sampler}
	if k.Project {
		args = append(args, coord)
	} else {
		args = append(args, w.splitCoordinate(t, k.Coordinate, coord, false)...)
	}

	var ref string
	if k.DepthRef != nil {
		if ref, err = w.expr(*k.DepthRef); err != nil {
			return "", err
		}
		if divisor != "" {
			ref = fmt.Sprintf("(%s / %s)", ref, divisor)
		}
		args = append(args, ref)
	}

	var offset string
	if k.Offset != nil {
		if offset, err = w.expr(*k.Offset); err != nil {
			return "", err
		}
	}

	if k.Gather != nil {
		method := "gather"
		if ref != "" {
			method = "gather_compare"
			if offset != "" {
				args = append(args, offset)
			}
			return fmt.Sprintf("%s.%s(%s)", tex, method, strings.Join(args, ", ")), nil
		}
		comp, ok := w.fn.Expr(*k.Gather).Kind.(ir.ExprConstant)
		c := w.module.Constant(comp.Constant)
		if !ok || c == nil || c.Uint32() > 3 {
			return "", fmt.Errorf("gather component must be a constant between 0 and 3")
		}
		if c.Uint32() != 0 || offset != "" {
			if offset == "" {
				offset = "metal::int2(0)"
			}
			args = append(args, offset)
		}
		if c.Uint32() != 0 {
			args = append(args, "metal::component::"+string(components[c.Uint32()]))
		}
		return fmt.Sprintf("%s.gather(%s)", tex, strings.Join(args, ", ")), nil
	}

	switch level := k.Level.(type) {
	case ir.SampleLevelExact:
		lod, err := w.expr(level.Level)
		if err != nil {
			return "", err
		}
		args = append(args, fmt.Sprintf("metal::level(%s)", lod))
	case ir.SampleLevelBias:
		if ref != "" {
			return "", fmt.Errorf("depth comparison with a bias is not supported")
		}
		bias, err := w.expr(level.Bias)
		if err != nil {
			return "", err
		}
		args = append(args, fmt.Sprintf("metal::bias(%s)", bias))
	case ir.SampleLevelGradient:
		grads, err := w.exprList([]ir.ExpressionHandle{level.X, level.Y})
		if err != nil {
			return "", err
		}
		args = append(args, fmt.Sprintf("%s(%s, %s)", gradientFunction(t.Image.Dim), grads[0], grads[1]))
	}
	if offset != "" {
		args = append(args, offset)
	}

	method := "sample"
	if ref != "" {
		method = "sample_compare"
	}
	call := fmt.Sprintf("%s.%s(%s)", tex, method, strings.Join(args, ", "))
	if ref == "" && w.isDepthImage(k.SampledImage) {
		// Depth textures sample a single float.
		return w.widen(call, 1, e.Type), nil
	}
	return call, nil
}

// widen converts a texel with n components to the width of typ: extra
// components are dropped, a scalar is splatted.
func (w *Writer) widen(value string, n uint32, typ uint32) string {
	want := w.componentCount(typ)
	switch {
	case want == n:
		return value
	case n == 1:
		return fmt.Sprintf("%s(%s)", w.typeName(typ), value)
	case want < n:
		return value + "." + components[:want]
	}
	return value
}

// imageLoad writes a texture read.
func (w *Writer) imageLoad(e *ir.Expression, k ir.ExprImageLoad) (string, error) {
	t := w.imageType(k.Image)
	if t == nil {
		return "", fmt.Errorf("image load from a non-image value")
	}
	if t.Image.Dim == spirv.DimSubpassData {
		return "", fmt.Errorf("subpass inputs are not supported")
	}
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}
	coord, err := w.expr(k.Coordinate)
	if err != nil {
		return "", err
	}
	args := w.splitCoordinate(t, k.Coordinate, coord, true)

	mipmapped := t.Image.Sampled != 2 && !t.Image.Multisampled && t.Image.Dim != spirv.DimBuffer
	switch {
	case k.Sample != nil && t.Image.Multisampled:
		sample, err := w.expr(*k.Sample)
		if err != nil {
			return "", err
		}
		args = append(args, fmt.Sprintf("uint(%s)", sample))
	case k.Level != nil && mipmapped:
		lod, err := w.expr(*k.Level)
		if err != nil {
			return "", err
		}
		args = append(args, fmt.Sprintf("uint(%s)", lod))
	case mipmapped && t.Image.Dim != spirv.Dim1D:
		args = append(args, "0")
	}

	call := fmt.Sprintf("%s.read(%s)", image, strings.Join(args, ", "))
	if w.isDepthImage(k.Image) {
		return w.widen(call, 1, e.Type), nil
	}
	return w.widen(call, 4, e.Type), nil
}

// imageQuery writes a size, level count or sample count query.
func (w *Writer) imageQuery(e *ir.Expression, k ir.ExprImageQuery) (string, error) {
	t := w.imageType(k.Image)
	if t == nil {
		return "", fmt.Errorf("image query on a non-image value")
	}
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}

	switch k.Query {
	case ir.ImageQueryNumLevels:
		return fmt.Sprintf("%s(%s.get_num_mip_levels())", w.typeName(e.Type), image), nil
	case ir.ImageQueryNumSamples:
		return fmt.Sprintf("%s(%s.get_num_samples())", w.typeName(e.Type), image), nil
	case ir.ImageQuerySize:
	default:
		return "", fmt.Errorf("image query %d is not supported", k.Query)
	}

	mipmapped := t.Image.Sampled != 2 && !t.Image.Multisampled && t.Image.Dim != spirv.DimBuffer && t.Image.Dim != spirv.Dim1D
	lod := ""
	if mipmapped {
		lod = "0"
		if k.Level != nil {
			level, err := w.expr(*k.Level)
			if err != nil {
				return "", err
			}
			lod = fmt.Sprintf("uint(%s)", level)
		}
	}

	dims := []string{fmt.Sprintf("%s.get_width(%s)", image, lod)}
	switch t.Image.Dim {
	case spirv.Dim1D, spirv.DimBuffer:
	case spirv.Dim3D:
		dims = append(dims, fmt.Sprintf("%s.get_height(%s)", image, lod), fmt.Sprintf("%s.get_depth(%s)", image, lod))
	default:
		dims = append(dims, fmt.Sprintf("%s.get_height(%s)", image, lod))
	}
	if t.Image.Arrayed {
		dims = append(dims, fmt.Sprintf("%s.get_array_size()", image))
	}
	if want := int(w.componentCount(e.Type)); want < len(dims) {
		dims = dims[:want]
	}
	return fmt.Sprintf("%s(%s)", w.typeName(e.Type), strings.Join(dims, ", ")), nil
}

// arrayLength returns the element count of the runtime array at the end of
// a storage buffer, computed from the byte size in the sizes buffer.
func (w *Writer) arrayLength(e *ir.Expression, k ir.ExprArrayLength) (string, error) {
	id, ok := opaqueRoot(w.fn, k.Pointer)
	if !ok {
		return "", fmt.Errorf("array length of a value outside a storage buffer")
	}
	slot, ok := w.bufferSlots[id]
	if !ok {
		return "", fmt.Errorf("array length of global %%%d, which is not a storage buffer", id)
	}
	st := w.module.Types[w.fn.Expr(k.Pointer).Type]
	if st == nil || st.Kind != ir.TypeStruct || int(k.Member) >= len(st.Members) {
		return "", fmt.Errorf("array length of a non-struct")
	}
	dec := w.module.Decorations
	off, _ := dec.MemberDecoration(st.ID, k.Member, spirv.DecorationOffset)
	stride, _ := dec.Decoration(st.Members[k.Member], spirv.DecorationArrayStride)
	if stride == 0 {
		return "", fmt.Errorf("runtime array of %%%d has no ArrayStride", st.ID)
	}
	value := fmt.Sprintf("((%s[%d] - %d) / %d)", sizesBufferName, slot, off, stride)
	if w.isSigned(e.Type) {
		return fmt.Sprintf("int%s", value), nil
	}
	return value, nil
}
