// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
	"github.com/gogpu/spvcross/spirv"
)

// components are the swizzle letters for vector components.
const components = "xyzw"

// expr returns the GLSL text of an expression. Baked expressions are
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
			return "", fmt.Errorf("unknown constant %%%d", k.Constant)
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
			return "", fmt.Errorf("unknown local %%%d", k.Variable)
		}
		return name, nil

	case ir.ExprLoad:
		return w.expr(k.Pointer)

	case ir.ExprAccess:
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
		return fmt.Sprintf("%s(%s)", w.constructorName(e.Type), strings.Join(args, ", ")), nil

	case ir.ExprUnary:
		return w.unary(k)

	case ir.ExprBinary:
		return w.binary(e, k)

	case ir.ExprSelect:
		cond, err := w.expr(k.Condition)
		if err != nil {
			return "", err
		}
		accept, err := w.expr(k.Accept)
		if err != nil {
			return "", err
		}
		reject, err := w.expr(k.Reject)
		if err != nil {
			return "", err
		}
		if w.isVector(w.fn.Expr(k.Condition).Type) {
			return fmt.Sprintf("mix(%s, %s, %s)", reject, accept, cond), nil
		}
		return fmt.Sprintf("(%s ? %s : %s)", cond, accept, reject), nil

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
		return "", fmt.Errorf("unsupported relational function %d", k.Fun)

	case ir.ExprMath:
		return w.math(e, k)

	case ir.ExprAs:
		return w.as(e, k)

	case ir.ExprSampledImage:
		image, err := w.expr(k.Image)
		if err != nil {
			return "", err
		}
		if !w.options.Vulkan {
			// The image is already declared as a combined sampler.
			return image, nil
		}
		sampler, err := w.expr(k.Sampler)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s, %s)", w.typeName(e.Type), image, sampler), nil

	case ir.ExprImageSample:
		return w.imageSample(k)

	case ir.ExprImageLoad:
		return w.imageLoad(k)

	case ir.ExprImageQuery:
		return w.imageQuery(e, k)

	case ir.ExprCallResult:
		return "", fmt.Errorf("result of call to %%%d used before the call", k.Function)

	case ir.ExprArrayLength:
		base, err := w.expr(k.Pointer)
		if err != nil {
			return "", err
		}
		structID := w.module.BaseType(w.fn.Expr(k.Pointer).Type)
		member := w.memberNames[memberKey{structID, k.Member}]
		return fmt.Sprintf("%s(%s.%s.length())", w.typeName(e.Type), base, member), nil
	}

	return "", fmt.Errorf("unsupported expression kind: %T", e.Kind)
}

// exprList returns the GLSL text of several expressions.
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

// globalName returns how a global is referenced: builtins by their gl_
// variable, everything else by its declared name.
func (w *Writer) globalName(id uint32) (string, error) {
	if b, ok := w.module.BuiltIn(id); ok {
		return w.builtinName(b)
	}
	name, ok := w.names[id]
	if !ok {
		return "", fmt.Errorf("unknown global %%%d", id)
	}
	return name, nil
}

// accessIndex writes a constant-index access: a member, a component or an
// element depending on the base type.
func (w *Writer) accessIndex(k ir.ExprAccessIndex) (string, error) {
	baseExpr := w.fn.Expr(k.Base)
	t := w.module.Types[baseExpr.Type]
	if t == nil {
		return "", fmt.Errorf("access into an untyped value")
	}

	// Members of builtin blocks are the gl_ variables themselves.
	if t.Kind == ir.TypeStruct && w.module.IsBuiltinBlock(t.ID) {
		b, ok := w.module.MemberBuiltIn(t.ID, k.Index)
		if !ok {
			return "", fmt.Errorf("member %d of builtin block %%%d is not a builtin", k.Index, t.ID)
		}
		name, err := w.builtinName(b)
		if err != nil {
			return "", err
		}
		if _, direct := baseExpr.Kind.(ir.ExprGlobalVariable); direct {
			return name, nil
		}
		base, err := w.expr(k.Base)
		if err != nil {
			return "", err
		}
		return base + "." + name, nil
	}

	base, err := w.expr(k.Base)
	if err != nil {
		return "", err
	}
	switch t.Kind {
	case ir.TypeStruct:
		name, ok := w.memberNames[memberKey{t.ID, k.Index}]
		if !ok {
			return "", fmt.Errorf("member %d of struct %%%d out of range", k.Index, t.ID)
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

// isUnsigned reports whether the scalar type of id is an unsigned integer.
func (w *Writer) isUnsigned(id uint32) bool {
	s := w.module.Scalar(id)
	return s != nil && s.Kind == ir.TypeInt && !s.Signed
}

// castOperand converts an integer operand to the signedness of want.
// SPIR-V integer instructions accept operands of either signedness; GLSL
// does not.
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
	t := w.module.Types[w.fn.Expr(h).Type]
	if t != nil && t.Kind == ir.TypeVector {
		return fmt.Sprintf("%s(%s)", w.vectorToGLSL(target, t.Count), s), nil
	}
	return fmt.Sprintf("%s(%s)", w.scalarToGLSL(target), s), nil
}

func (w *Writer) unary(k ir.ExprUnary) (string, error) {
	operand, err := w.expr(k.Expr)
	if err != nil {
		return "", err
	}
	switch k.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("(-%s)", operand), nil
	case ir.UnaryLogicalNot:
		if w.isVector(w.fn.Expr(k.Expr).Type) {
			return fmt.Sprintf("not(%s)", operand), nil
		}
		return fmt.Sprintf("(!%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("(~%s)", operand), nil
	}
	return "", fmt.Errorf("unsupported unary operator %d", k.Op)
}

// vectorComparisons are the GLSL functions for component-wise comparisons.
var vectorComparisons = map[ir.BinaryOperator]string{
	ir.BinaryEqual:        "equal",
	ir.BinaryNotEqual:     "notEqual",
	ir.BinaryLess:         "lessThan",
	ir.BinaryLessEqual:    "lessThanEqual",
	ir.BinaryGreater:      "greaterThan",
	ir.BinaryGreaterEqual: "greaterThanEqual",
}

// binaryOperators are the GLSL infix operators.
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
	right := ""
	if k.Op == ir.BinaryShiftLeft || k.Op == ir.BinaryShiftRight {
		right, err = w.expr(k.Right)
	} else {
		right, err = w.castOperand(k.Right, want)
	}
	if err != nil {
		return "", err
	}

	vector := w.isVector(leftType)
	switch {
	case k.Op.IsComparison() && vector:
		return fmt.Sprintf("%s(%s, %s)", vectorComparisons[k.Op], left, right), nil

	case (k.Op == ir.BinaryLogicalAnd || k.Op == ir.BinaryLogicalOr) && vector:
		t := w.module.Types[leftType]
		op := "&"
		if k.Op == ir.BinaryLogicalOr {
			op = "|"
		}
		return fmt.Sprintf("bvec%d(uvec%d(%s) %s uvec%d(%s))", t.Count, t.Count, left, op, t.Count, right), nil

	case k.Op == ir.BinaryModulo && w.isFloat(e.Type):
		return fmt.Sprintf("(%s - %s * trunc(%s / %s))", left, right, left, right), nil
	}

	op, ok := binaryOperators[k.Op]
	if !ok {
		return "", fmt.Errorf("unsupported binary operator %d", k.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

func (w *Writer) derivative(k ir.ExprDerivative) (string, error) {
	arg, err := w.expr(k.Expr)
	if err != nil {
		return "", err
	}
	var name string
	switch k.Axis {
	case ir.DerivativeX:
		name = "dFdx"
	case ir.DerivativeY:
		name = "dFdy"
	default:
		name = "fwidth"
	}
	// Fine and coarse variants need GLSL 4.50; ES has none.
	if !w.options.LangVersion.ES && !w.options.LangVersion.versionLessThan(450) {
		switch k.Control {
		case ir.DerivativeFine:
			name += "Fine"
		case ir.DerivativeCoarse:
			name += "Coarse"
		}
	}
	return fmt.Sprintf("%s(%s)", name, arg), nil
}

// mathFunctions maps math functions whose GLSL builtin is not simply the
// lower-cased name.
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
	ir.MathAtan2:       "atan",
	ir.MathAsinh:       "asinh",
	ir.MathAcosh:       "acosh",
	ir.MathAtanh:       "atanh",
	ir.MathRadians:     "radians",
	ir.MathDegrees:     "degrees",
	ir.MathCeil:        "ceil",
	ir.MathFloor:       "floor",
	ir.MathRound:       "round",
	ir.MathRoundEven:   "roundEven",
	ir.MathFract:       "fract",
	ir.MathTrunc:       "trunc",
	ir.MathExp:         "exp",
	ir.MathExp2:        "exp2",
	ir.MathLog:         "log",
	ir.MathLog2:        "log2",
	ir.MathPow:         "pow",
	ir.MathDot:         "dot",
	ir.MathOuter:       "outerProduct",
	ir.MathCross:       "cross",
	ir.MathDistance:    "distance",
	ir.MathLength:      "length",
	ir.MathNormalize:   "normalize",
	ir.MathFaceForward: "faceforward",
	ir.MathReflect:     "reflect",
	ir.MathRefract:     "refract",
	ir.MathSign:        "sign",
	ir.MathFma:         "fma",
	ir.MathMix:         "mix",
	ir.MathStep:        "step",
	ir.MathSmoothStep:  "smoothstep",
	ir.MathSqrt:        "sqrt",
	ir.MathInverseSqrt: "inversesqrt",
	ir.MathInverse:     "inverse",
	ir.MathTranspose:   "transpose",
	ir.MathDeterminant: "determinant",
	ir.MathFMod:        "mod",
	ir.MathLdexp:       "ldexp",
	ir.MathFindLSB:     "findLSB",
	ir.MathFindMSB:     "findMSB",
	ir.MathBitCount:    "bitCount",
	ir.MathBitReverse:  "bitfieldReverse",
}

func (w *Writer) math(e *ir.Expression, k ir.ExprMath) (string, error) {
	name, ok := mathFunctions[k.Fun]
	if !ok {
		return "", fmt.Errorf("unsupported math function %d", k.Fun)
	}
	args, err := w.exprList(k.Args)
	if err != nil {
		return "", err
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	switch k.Fun {
	case ir.MathFindLSB, ir.MathFindMSB, ir.MathBitCount:
		// These return int whatever the operand type.
		if w.isUnsigned(e.Type) {
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
		return "", fmt.Errorf("bitcast of a non-numeric value")
	}
	switch {
	case from.Kind == ir.TypeFloat && to.Kind == ir.TypeInt && to.Signed:
		return fmt.Sprintf("floatBitsToInt(%s)", arg), nil
	case from.Kind == ir.TypeFloat && to.Kind == ir.TypeInt:
		return fmt.Sprintf("floatBitsToUint(%s)", arg), nil
	case from.Kind == ir.TypeInt && to.Kind == ir.TypeFloat && from.Signed:
		return fmt.Sprintf("intBitsToFloat(%s)", arg), nil
	case from.Kind == ir.TypeInt && to.Kind == ir.TypeFloat:
		return fmt.Sprintf("uintBitsToFloat(%s)", arg), nil
	case from.Kind == to.Kind && from.Signed == to.Signed:
		return arg, nil
	}
	return fmt.Sprintf("%s(%s)", target, arg), nil
}

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

// coordinateSize returns the component count of a coordinate.
func (w *Writer) coordinateSize(h ir.ExpressionHandle) uint32 {
	if t := w.module.Types[w.fn.Expr(h).Type]; t != nil && t.Kind == ir.TypeVector {
		return t.Count
	}
	return 1
}

// imageSample writes a texture sampling or gather call. The function name
// is assembled from the operands: texture[Proj][Lod|Grad][Offset].
//
//nolint:gocyclo,cyclop // one branch per image operand
func (w *Writer) imageSample(k ir.ExprImageSample) (string, error) {
	image, err := w.expr(k.SampledImage)
	if err != nil {
		return "", err
	}
	coord, err := w.expr(k.Coordinate)
	if err != nil {
		return "", err
	}
	args := []string{image}

	if k.Gather != nil {
		name := "textureGather"
		if k.Offset != nil {
			name += "Offset"
		}
		args = append(args, coord)
		if k.DepthRef != nil {
			ref, err := w.expr(*k.DepthRef)
			if err != nil {
				return "", err
			}
			args = append(args, ref)
		}
		if k.Offset != nil {
			offset, err := w.expr(*k.Offset)
			if err != nil {
				return "", err
			}
			args = append(args, offset)
		}
		if k.DepthRef == nil {
			comp, err := w.expr(*k.Gather)
			if err != nil {
				return "", err
			}
			args = append(args, comp)
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
	}

	name := "texture"
	if k.Project {
		name += "Proj"
	}

	// The depth reference joins the coordinate when it fits in a vec4.
	n := w.coordinateSize(k.Coordinate)
	var separateRef string
	if k.DepthRef != nil {
		ref, err := w.expr(*k.DepthRef)
		if err != nil {
			return "", err
		}
		switch {
		case k.Project && n == 3:
			coord = fmt.Sprintf("vec4(%s.xy, %s, %s.z)", coord, ref, coord)
		case n < 4:
			coord = fmt.Sprintf("vec%d(%s, %s)", n+1, coord, ref)
		default:
			separateRef = ref
		}
	}
	args = append(args, coord)
	if separateRef != "" {
		args = append(args, separateRef)
	}

	var bias string
	switch level := k.Level.(type) {
	case ir.SampleLevelExact:
		name += "Lod"
		lod, err := w.expr(level.Level)
		if err != nil {
			return "", err
		}
		args = append(args, lod)
	case ir.SampleLevelGradient:
		name += "Grad"
		grads, err := w.exprList([]ir.ExpressionHandle{level.X, level.Y})
		if err != nil {
			return "", err
		}
		args = append(args, grads...)
	case ir.SampleLevelBias:
		bias, err = w.expr(level.Bias)
		if err != nil {
			return "", err
		}
	}

	if k.Offset != nil {
		name += "Offset"
		offset, err := w.expr(*k.Offset)
		if err != nil {
			return "", err
		}
		args = append(args, offset)
	}
	if bias != "" {
		args = append(args, bias)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
}

// imageLoad writes a texel fetch, a storage image load or a subpass read.
func (w *Writer) imageLoad(k ir.ExprImageLoad) (string, error) {
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}
	t := w.imageType(k.Image)
	if t == nil {
		return "", fmt.Errorf("image load from a non-image value")
	}

	var sample string
	if k.Sample != nil {
		if sample, err = w.expr(*k.Sample); err != nil {
			return "", err
		}
	}

	if t.Image.Dim == spirv.DimSubpassData {
		if !w.options.Vulkan {
			if sample != "" {
				return fmt.Sprintf("texelFetch(%s, ivec2(gl_FragCoord.xy), %s)", image, sample), nil
			}
			return fmt.Sprintf("texelFetch(%s, ivec2(gl_FragCoord.xy), 0)", image), nil
		}
		if sample != "" {
			return fmt.Sprintf("subpassLoad(%s, %s)", image, sample), nil
		}
		return fmt.Sprintf("subpassLoad(%s)", image), nil
	}

	coord, err := w.expr(k.Coordinate)
	if err != nil {
		return "", err
	}
	if k.Storage || t.Image.Sampled == 2 {
		if sample != "" {
			return fmt.Sprintf("imageLoad(%s, %s, %s)", image, coord, sample), nil
		}
		return fmt.Sprintf("imageLoad(%s, %s)", image, coord), nil
	}

	switch {
	case t.Image.Dim == spirv.DimBuffer:
		return fmt.Sprintf("texelFetch(%s, %s)", image, coord), nil
	case sample != "":
		return fmt.Sprintf("texelFetch(%s, %s, %s)", image, coord, sample), nil
	case k.Level != nil:
		lod, err := w.expr(*k.Level)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("texelFetch(%s, %s, %s)", image, coord, lod), nil
	}
	return fmt.Sprintf("texelFetch(%s, %s, 0)", image, coord), nil
}

// imageQuery writes a size, level count or sample count query. GLSL
// returns signed values, so unsigned results are converted.
func (w *Writer) imageQuery(e *ir.Expression, k ir.ExprImageQuery) (string, error) {
	image, err := w.expr(k.Image)
	if err != nil {
		return "", err
	}
	t := w.imageType(k.Image)
	if t == nil {
		return "", fmt.Errorf("image query on a non-image value")
	}
	storage := t.Image.Sampled == 2

	var call string
	switch k.Query {
	case ir.ImageQuerySize:
		switch {
		case storage:
			call = fmt.Sprintf("imageSize(%s)", image)
		case t.Image.Dim == spirv.DimBuffer || t.Image.Dim == spirv.DimRect || t.Image.Multisampled:
			call = fmt.Sprintf("textureSize(%s)", image)
		case k.Level != nil:
			lod, err := w.expr(*k.Level)
			if err != nil {
				return "", err
			}
			call = fmt.Sprintf("textureSize(%s, int(%s))", image, lod)
		default:
			call = fmt.Sprintf("textureSize(%s, 0)", image)
		}
	case ir.ImageQueryNumLevels:
		call = fmt.Sprintf("textureQueryLevels(%s)", image)
	case ir.ImageQueryNumSamples:
		if storage {
			call = fmt.Sprintf("imageSamples(%s)", image)
		} else {
			call = fmt.Sprintf("textureSamples(%s)", image)
		}
	default:
		return "", fmt.Errorf("unsupported image query %d", k.Query)
	}
	if w.isUnsigned(e.Type) {
		return fmt.Sprintf("%s(%s)", w.typeName(e.Type), call), nil
	}
	return call, nil
}
