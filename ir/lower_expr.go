package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

var binaryOps = map[spirv.OpCode]BinaryOperator{
	spirv.OpIAdd: BinaryAdd, spirv.OpFAdd: BinaryAdd,
	spirv.OpISub: BinarySubtract, spirv.OpFSub: BinarySubtract,
	spirv.OpIMul: BinaryMultiply, spirv.OpFMul: BinaryMultiply,
	spirv.OpVectorTimesScalar: BinaryMultiply, spirv.OpMatrixTimesScalar: BinaryMultiply,
	spirv.OpVectorTimesMatrix: BinaryMultiply, spirv.OpMatrixTimesVector: BinaryMultiply,
	spirv.OpMatrixTimesMatrix: BinaryMultiply,
	spirv.OpUDiv: BinaryDivide, spirv.OpSDiv: BinaryDivide, spirv.OpFDiv: BinaryDivide,
	spirv.OpUMod: BinaryModulo, spirv.OpSRem: BinaryModulo, spirv.OpSMod: BinaryModulo,
	spirv.OpFRem: BinaryModulo,

	spirv.OpIEqual: BinaryEqual, spirv.OpFOrdEqual: BinaryEqual, spirv.OpFUnordEqual: BinaryEqual,
	spirv.OpLogicalEqual: BinaryEqual,
	spirv.OpINotEqual: BinaryNotEqual, spirv.OpFOrdNotEqual: BinaryNotEqual,
	spirv.OpFUnordNotEqual: BinaryNotEqual, spirv.OpLogicalNotEqual: BinaryNotEqual,
	spirv.OpULessThan: BinaryLess, spirv.OpSLessThan: BinaryLess,
	spirv.OpFOrdLessThan: BinaryLess, spirv.OpFUnordLessThan: BinaryLess,
	spirv.OpULessThanEqual: BinaryLessEqual, spirv.OpSLessThanEqual: BinaryLessEqual,
	spirv.OpFOrdLessThanEqual: BinaryLessEqual, spirv.OpFUnordLessThanEqual: BinaryLessEqual,
	spirv.OpUGreaterThan: BinaryGreater, spirv.OpSGreaterThan: BinaryGreater,
	spirv.OpFOrdGreaterThan: BinaryGreater, spirv.OpFUnordGreaterThan: BinaryGreater,
	spirv.OpUGreaterThanEqual: BinaryGreaterEqual, spirv.OpSGreaterThanEqual: BinaryGreaterEqual,
	spirv.OpFOrdGreaterThanEqual: BinaryGreaterEqual, spirv.OpFUnordGreaterThanEqual: BinaryGreaterEqual,

	spirv.OpBitwiseAnd: BinaryAnd, spirv.OpBitwiseOr: BinaryInclusiveOr,
	spirv.OpBitwiseXor: BinaryExclusiveOr,
	spirv.OpLogicalAnd: BinaryLogicalAnd, spirv.OpLogicalOr: BinaryLogicalOr,
	spirv.OpShiftLeftLogical: BinaryShiftLeft, spirv.OpShiftRightLogical: BinaryShiftRight,
	spirv.OpShiftRightArithmetic: BinaryShiftRight,
}

var unaryOps = map[spirv.OpCode]UnaryOperator{
	spirv.OpSNegate: UnaryNegate, spirv.OpFNegate: UnaryNegate,
	spirv.OpNot: UnaryBitwiseNot, spirv.OpLogicalNot: UnaryLogicalNot,
}

var relationalOps = map[spirv.OpCode]RelationalFunction{
	spirv.OpAll: RelationalAll, spirv.OpAny: RelationalAny,
	spirv.OpIsNan: RelationalIsNan, spirv.OpIsInf: RelationalIsInf,
}

var derivativeOps = map[spirv.OpCode]ExprDerivative{
	spirv.OpDPdx:         {Axis: DerivativeX},
	spirv.OpDPdy:         {Axis: DerivativeY},
	spirv.OpFwidth:       {Axis: DerivativeWidth},
	spirv.OpDPdxFine:     {Axis: DerivativeX, Control: DerivativeFine},
	spirv.OpDPdyFine:     {Axis: DerivativeY, Control: DerivativeFine},
	spirv.OpFwidthFine:   {Axis: DerivativeWidth, Control: DerivativeFine},
	spirv.OpDPdxCoarse:   {Axis: DerivativeX, Control: DerivativeCoarse},
	spirv.OpDPdyCoarse:   {Axis: DerivativeY, Control: DerivativeCoarse},
	spirv.OpFwidthCoarse: {Axis: DerivativeWidth, Control: DerivativeCoarse},
}

var glslStd450 = map[spirv.GLSLstd450]MathFunction{
	spirv.GLSLstd450Round: MathRound, spirv.GLSLstd450RoundEven: MathRoundEven,
	spirv.GLSLstd450Trunc: MathTrunc, spirv.GLSLstd450FAbs: MathAbs, spirv.GLSLstd450SAbs: MathAbs,
	spirv.GLSLstd450FSign: MathSign, spirv.GLSLstd450SSign: MathSign,
	spirv.GLSLstd450Floor: MathFloor, spirv.GLSLstd450Ceil: MathCeil, spirv.GLSLstd450Fract: MathFract,
	spirv.GLSLstd450Radians: MathRadians, spirv.GLSLstd450Degrees: MathDegrees,
	spirv.GLSLstd450Sin: MathSin, spirv.GLSLstd450Cos: MathCos, spirv.GLSLstd450Tan: MathTan,
	spirv.GLSLstd450Asin: MathAsin, spirv.GLSLstd450Acos: MathAcos, spirv.GLSLstd450Atan: MathAtan,
	spirv.GLSLstd450Sinh: MathSinh, spirv.GLSLstd450Cosh: MathCosh, spirv.GLSLstd450Tanh: MathTanh,
	spirv.GLSLstd450Atan2: MathAtan2, spirv.GLSLstd450Pow: MathPow,
	spirv.GLSLstd450Exp: MathExp, spirv.GLSLstd450Log: MathLog,
	spirv.GLSLstd450Exp2: MathExp2, spirv.GLSLstd450Log2: MathLog2,
	spirv.GLSLstd450Sqrt: MathSqrt, spirv.GLSLstd450InverseSqrt: MathInverseSqrt,
	spirv.GLSLstd450Determinant: MathDeterminant, spirv.GLSLstd450MatrixInverse: MathInverse,
	spirv.GLSLstd450FMin: MathMin, spirv.GLSLstd450UMin: MathMin, spirv.GLSLstd450SMin: MathMin,
	spirv.GLSLstd450NMin: MathMin,
	spirv.GLSLstd450FMax: MathMax, spirv.GLSLstd450UMax: MathMax, spirv.GLSLstd450SMax: MathMax,
	spirv.GLSLstd450NMax: MathMax,
	spirv.GLSLstd450FClamp: MathClamp, spirv.GLSLstd450UClamp: MathClamp,
	spirv.GLSLstd450SClamp: MathClamp, spirv.GLSLstd450NClamp: MathClamp,
	spirv.GLSLstd450FMix: MathMix, spirv.GLSLstd450Step: MathStep,
	spirv.GLSLstd450SmoothStep: MathSmoothStep, spirv.GLSLstd450Fma: MathFma,
	spirv.GLSLstd450Ldexp: MathLdexp, spirv.GLSLstd450Length: MathLength,
	spirv.GLSLstd450Distance: MathDistance, spirv.GLSLstd450Cross: MathCross,
	spirv.GLSLstd450Normalize: MathNormalize, spirv.GLSLstd450FaceForward: MathFaceForward,
	spirv.GLSLstd450Reflect: MathReflect, spirv.GLSLstd450Refract: MathRefract,
	spirv.GLSLstd450FindILsb: MathFindLSB, spirv.GLSLstd450FindSMsb: MathFindMSB,
	spirv.GLSLstd450FindUMsb: MathFindMSB,
}

// expression lowers a value-producing instruction.
//
//nolint:gocyclo,cyclop,funlen // one case per opcode family
func (lw *lowerer) expression(inst spirv.Instruction) (ExpressionHandle, error) {
	w := inst.Words
	op := inst.Opcode
	typ, r := w[0], w[1]

	if bop, ok := binaryOps[op]; ok {
		ops, err := lw.valueList(slice(w, 2, 4))
		if err != nil || len(ops) != 2 {
			return 0, lw.operandError(r, err)
		}
		return lw.add(ExprBinary{Op: bop, Left: ops[0], Right: ops[1]}, typ, r), nil
	}
	if uop, ok := unaryOps[op]; ok {
		v, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		return lw.add(ExprUnary{Op: uop, Expr: v}, typ, r), nil
	}
	if fun, ok := relationalOps[op]; ok {
		v, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		return lw.add(ExprRelational{Fun: fun, Argument: v}, typ, r), nil
	}
	if d, ok := derivativeOps[op]; ok {
		v, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		d.Expr = v
		return lw.add(d, typ, r), nil
	}

	switch op {
	case spirv.OpUndef:
		return lw.add(ExprUndef{}, typ, r), nil

	case spirv.OpLoad:
		ptr, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		return lw.add(ExprLoad{Pointer: ptr}, typ, r), nil

	case spirv.OpAccessChain, spirv.OpInBoundsAccessChain:
		return lw.accessChain(inst)

	case spirv.OpArrayLength:
		ptr, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		return lw.add(ExprArrayLength{Pointer: ptr, Member: w[3]}, typ, r), nil

	case spirv.OpVectorExtractDynamic:
		ops, err := lw.valueList(slice(w, 2, 4))
		if err != nil || len(ops) != 2 {
			return 0, lw.operandError(r, err)
		}
		return lw.add(ExprAccess{Base: ops[0], Index: ops[1]}, typ, r), nil

	case spirv.OpCompositeExtract:
		base, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		cur := lw.body.Expressions[base].Type
		for i, idx := range w[3:] {
			next, ok := lw.m.ComponentType(cur, idx)
			if !ok {
				return 0, errorAt(ErrInvalidModule, r, "index %d out of range", idx)
			}
			id := uint32(0)
			if i == len(w)-4 {
				id = r
			}
			base = lw.add(ExprAccessIndex{Base: base, Index: idx}, next, id)
			cur = next
		}
		return base, nil

	case spirv.OpVectorShuffle:
		return lw.shuffle(inst)

	case spirv.OpCompositeConstruct:
		comps, err := lw.valueList(w[2:])
		if err != nil {
			return 0, err
		}
		return lw.add(ExprCompose{Components: comps}, typ, r), nil

	case spirv.OpSelect:
		ops, err := lw.valueList(slice(w, 2, 5))
		if err != nil || len(ops) != 3 {
			return 0, lw.operandError(r, err)
		}
		return lw.add(ExprSelect{Condition: ops[0], Accept: ops[1], Reject: ops[2]}, typ, r), nil

	case spirv.OpConvertFToU, spirv.OpConvertFToS, spirv.OpConvertSToF, spirv.OpConvertUToF,
		spirv.OpUConvert, spirv.OpSConvert, spirv.OpFConvert, spirv.OpBitcast:
		v, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		return lw.add(ExprAs{Expr: v, Bitcast: op == spirv.OpBitcast}, typ, r), nil

	case spirv.OpDot:
		return lw.math(MathDot, typ, r, slice(w, 2, 4))
	case spirv.OpOuterProduct:
		return lw.math(MathOuter, typ, r, slice(w, 2, 4))
	case spirv.OpTranspose:
		return lw.math(MathTranspose, typ, r, slice(w, 2, 3))
	case spirv.OpFMod:
		return lw.math(MathFMod, typ, r, slice(w, 2, 4))
	case spirv.OpBitCount:
		return lw.math(MathBitCount, typ, r, slice(w, 2, 3))
	case spirv.OpBitReverse:
		return lw.math(MathBitReverse, typ, r, slice(w, 2, 3))

	case spirv.OpExtInst:
		set := lw.m.ExtInstSets[w[2]]
		if set != spirv.GLSLstd450Name {
			return 0, errorAt(ErrUnsupportedFeature, r, "extended instruction set %q", set)
		}
		fun, ok := glslStd450[spirv.GLSLstd450(w[3])]
		if !ok {
			return 0, errorAt(ErrUnsupportedFeature, r, "GLSL.std.450 instruction %d", w[3])
		}
		return lw.math(fun, typ, r, w[4:])

	case spirv.OpSampledImage:
		ops, err := lw.valueList(slice(w, 2, 4))
		if err != nil || len(ops) != 2 {
			return 0, lw.operandError(r, err)
		}
		return lw.add(ExprSampledImage{Image: ops[0], Sampler: ops[1]}, typ, r), nil

	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
		spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageGather:
		return lw.sample(inst)

	case spirv.OpImageFetch, spirv.OpImageRead:
		return lw.imageLoad(inst)

	case spirv.OpImageQuerySize, spirv.OpImageQuerySizeLod, spirv.OpImageQueryLevels,
		spirv.OpImageQuerySamples:
		img, err := lw.operand(w, 2)
		if err != nil {
			return 0, err
		}
		q := ExprImageQuery{Image: img}
		switch op {
		case spirv.OpImageQuerySizeLod:
			level, err := lw.operand(w, 3)
			if err != nil {
				return 0, err
			}
			q.Level = &level
		case spirv.OpImageQueryLevels:
			q.Query = ImageQueryNumLevels
		case spirv.OpImageQuerySamples:
			q.Query = ImageQueryNumSamples
		}
		return lw.add(q, typ, r), nil
	}
	return 0, errorAt(ErrUnsupportedFeature, r, "instruction %s", op)
}

func (lw *lowerer) operand(w []uint32, i int) (ExpressionHandle, error) {
	if i >= len(w) {
		return 0, NewError(ErrInvalidModule, "missing operand %d", i)
	}
	return lw.value(w[i])
}

func (lw *lowerer) operandError(r uint32, err error) error {
	if err != nil {
		return err
	}
	return errorAt(ErrInvalidModule, r, "missing operands")
}

func (lw *lowerer) math(fun MathFunction, typ, r uint32, args []uint32) (ExpressionHandle, error) {
	hs, err := lw.valueList(args)
	if err != nil {
		return 0, err
	}
	if len(hs) == 0 {
		return 0, errorAt(ErrInvalidModule, r, "missing operands")
	}
	return lw.add(ExprMath{Fun: fun, Args: hs}, typ, r), nil
}

// accessChain lowers an access chain to one access per index. Struct
// members and constant indices become ExprAccessIndex.
func (lw *lowerer) accessChain(inst spirv.Instruction) (ExpressionHandle, error) {
	w := inst.Words
	r := w[1]
	base, err := lw.operand(w, 2)
	if err != nil {
		return 0, err
	}
	cur := lw.body.Expressions[base].Type
	indices := w[3:]
	if len(indices) == 0 {
		return base, nil
	}
	for i, idx := range indices {
		id := uint32(0)
		if i == len(indices)-1 {
			id = r
		}
		t := lw.m.Types[cur]
		c := lw.m.Constants[idx]
		literal := c != nil && c.Kind == ConstScalar && !c.Spec

		if t != nil && t.Kind == TypeStruct {
			if !literal {
				return 0, errorAt(ErrInvalidModule, r, "struct index %%%d is not a constant", idx)
			}
			next, ok := lw.m.ComponentType(cur, c.Uint32())
			if !ok {
				return 0, errorAt(ErrInvalidModule, r, "member %d out of range", c.Uint32())
			}
			base = lw.add(ExprAccessIndex{Base: base, Index: c.Uint32()}, next, id)
			cur = next
			continue
		}

		next, ok := lw.m.ComponentType(cur, 0)
		if !ok {
			return 0, errorAt(ErrInvalidModule, r, "type %%%d cannot be indexed", cur)
		}
		if literal {
			base = lw.add(ExprAccessIndex{Base: base, Index: c.Uint32()}, next, id)
		} else {
			index, err := lw.value(idx)
			if err != nil {
				return 0, err
			}
			base = lw.add(ExprAccess{Base: base, Index: index}, next, id)
		}
		cur = next
	}
	return base, nil
}

// shuffle lowers OpVectorShuffle to a swizzle when every component comes
// from one vector, and to a composition otherwise.
func (lw *lowerer) shuffle(inst spirv.Instruction) (ExpressionHandle, error) {
	w := inst.Words
	typ, r := w[0], w[1]
	ops, err := lw.valueList(slice(w, 2, 4))
	if err != nil || len(ops) != 2 {
		return 0, lw.operandError(r, err)
	}
	first := lw.m.Types[lw.body.Expressions[ops[0]].Type]
	if first == nil || first.Kind != TypeVector {
		return 0, errorAt(ErrInvalidModule, r, "shuffle of a non-vector")
	}
	n := first.Count
	comps := w[4:]

	fromFirst, fromSecond := true, true
	for _, c := range comps {
		if c == 0xFFFFFFFF {
			continue
		}
		if c < n {
			fromSecond = false
		} else {
			fromFirst = false
		}
	}
	switch {
	case fromFirst:
		return lw.add(ExprSwizzle{Vector: ops[0], Pattern: undefinedAsZero(comps, 0)}, typ, r), nil
	case fromSecond:
		return lw.add(ExprSwizzle{Vector: ops[1], Pattern: undefinedAsZero(comps, n)}, typ, r), nil
	}

	elem := first.Elem
	parts := make([]ExpressionHandle, len(comps))
	for i, c := range comps {
		src, idx := ops[0], c
		switch {
		case c == 0xFFFFFFFF:
			idx = 0
		case c >= n:
			src, idx = ops[1], c-n
		}
		parts[i] = lw.add(ExprAccessIndex{Base: src, Index: idx}, elem, 0)
	}
	return lw.add(ExprCompose{Components: parts}, typ, r), nil
}

// undefinedAsZero rebases a shuffle pattern and maps the undefined
// component selector to the first component.
func undefinedAsZero(comps []uint32, base uint32) []uint32 {
	out := make([]uint32, len(comps))
	for i, c := range comps {
		if c != 0xFFFFFFFF {
			out[i] = c - base
		}
	}
	return out
}

// sample lowers the sampling and gather instructions.
func (lw *lowerer) sample(inst spirv.Instruction) (ExpressionHandle, error) {
	w := inst.Words
	op := inst.Opcode
	typ, r := w[0], w[1]
	ops, err := lw.valueList(slice(w, 2, 4))
	if err != nil || len(ops) != 2 {
		return 0, lw.operandError(r, err)
	}
	s := ExprImageSample{
		SampledImage: ops[0],
		Coordinate:   ops[1],
		Level:        SampleLevelAuto{},
		Project:      op == spirv.OpImageSampleProjImplicitLod || op == spirv.OpImageSampleProjExplicitLod,
	}
	next := 4
	switch op {
	case spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod:
		ref, err := lw.operand(w, 4)
		if err != nil {
			return 0, err
		}
		s.DepthRef = &ref
		next = 5
	case spirv.OpImageGather:
		comp, err := lw.operand(w, 4)
		if err != nil {
			return 0, err
		}
		s.Gather = &comp
		next = 5
	}
	if next < len(w) {
		opnds, err := lw.imageOperandList(r, w[next], w[next+1:])
		if err != nil {
			return 0, err
		}
		switch {
		case opnds.bias != nil:
			s.Level = SampleLevelBias{Bias: *opnds.bias}
		case opnds.lod != nil:
			s.Level = SampleLevelExact{Level: *opnds.lod}
		case opnds.gradX != nil:
			s.Level = SampleLevelGradient{X: *opnds.gradX, Y: *opnds.gradY}
		}
		s.Offset = opnds.offset
		if opnds.sample != nil {
			return 0, errorAt(ErrInvalidModule, r, "Sample operand on a sampling instruction")
		}
	}
	return lw.add(s, typ, r), nil
}

func (lw *lowerer) imageLoad(inst spirv.Instruction) (ExpressionHandle, error) {
	w := inst.Words
	typ, r := w[0], w[1]
	ops, err := lw.valueList(slice(w, 2, 4))
	if err != nil || len(ops) != 2 {
		return 0, lw.operandError(r, err)
	}
	load := ExprImageLoad{Image: ops[0], Coordinate: ops[1], Storage: inst.Opcode == spirv.OpImageRead}
	if len(w) > 4 {
		opnds, err := lw.imageOperandList(r, w[4], w[5:])
		if err != nil {
			return 0, err
		}
		load.Level = opnds.lod
		load.Sample = opnds.sample
	}
	return lw.add(load, typ, r), nil
}

type imageOperandValues struct {
	bias, lod, gradX, gradY, offset, sample *ExpressionHandle
}

const supportedImageOperands = spirv.ImageOperandsBias | spirv.ImageOperandsLod |
	spirv.ImageOperandsGrad | spirv.ImageOperandsConstOffset | spirv.ImageOperandsOffset |
	spirv.ImageOperandsSample

// imageOperandList decodes the ids following an image operand mask, which
// appear in increasing order of their mask bit.
func (lw *lowerer) imageOperandList(r, mask uint32, ids []uint32) (imageOperandValues, error) {
	var out imageOperandValues
	if mask&^supportedImageOperands != 0 {
		return out, errorAt(ErrUnsupportedFeature, r, "image operands 0x%x", mask&^supportedImageOperands)
	}
	take := func() (*ExpressionHandle, error) {
		if len(ids) == 0 {
			return nil, errorAt(ErrInvalidModule, r, "image operand mask 0x%x names missing operands", mask)
		}
		h, err := lw.value(ids[0])
		ids = ids[1:]
		return &h, err
	}
	var err error
	if mask&spirv.ImageOperandsBias != 0 {
		if out.bias, err = take(); err != nil {
			return out, err
		}
	}
	if mask&spirv.ImageOperandsLod != 0 {
		if out.lod, err = take(); err != nil {
			return out, err
		}
	}
	if mask&spirv.ImageOperandsGrad != 0 {
		if out.gradX, err = take(); err != nil {
			return out, err
		}
		if out.gradY, err = take(); err != nil {
			return out, err
		}
	}
	if mask&(spirv.ImageOperandsConstOffset|spirv.ImageOperandsOffset) != 0 {
		if out.offset, err = take(); err != nil {
			return out, err
		}
	}
	if mask&spirv.ImageOperandsSample != 0 {
		if out.sample, err = take(); err != nil {
			return out, err
		}
	}
	return out, nil
}
