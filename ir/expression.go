package ir

// ExpressionHandle indexes FunctionBody.Expressions.
type ExpressionHandle uint32

// Expression represents an expression of a lowered function body.
//
// Expressions are pure: evaluating one twice gives the same value as long as
// no statement ran in between. A StmtEmit fixes the evaluation point of an
// expression that must not be re-evaluated; every other expression is
// written inline at each use.
type Expression struct {
	Kind ExpressionKind

	// Type is the value type of the expression. For pointer expressions
	// (variables and access chains) it is the pointee type.
	Type uint32

	// ID is the SPIR-V result id the expression was lowered from, or zero
	// for expressions the lowering synthesized.
	ID uint32
}

// ExpressionKind represents the different kinds of expressions.
type ExpressionKind interface {
	expressionKind()
}

// ExprConstant references a module-scope constant.
type ExprConstant struct {
	Constant uint32
}

func (ExprConstant) expressionKind() {}

// ExprUndef is an undefined value of the expression type.
type ExprUndef struct{}

func (ExprUndef) expressionKind() {}

// ExprFunctionArgument references a function parameter by its index.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprGlobalVariable references a module-scope variable. Images, samplers
// and sampled images are used directly; other globals are pointers.
type ExprGlobalVariable struct {
	Variable uint32
}

func (ExprGlobalVariable) expressionKind() {}

// ExprLocalVariable references a function-local variable.
// Produces a pointer to the variable's value.
type ExprLocalVariable struct {
	Variable uint32 // id of an entry in FunctionBody.Locals
}

func (ExprLocalVariable) expressionKind() {}

// ExprLoad loads a value indirectly through a pointer.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// ExprAccess performs array/vector/matrix access with a computed index.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

func (ExprAccess) expressionKind() {}

// ExprAccessIndex performs access with a compile-time constant index.
// Can access arrays, vectors, matrices, and struct fields.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSwizzle selects components of a single vector.
type ExprSwizzle struct {
	Vector  ExpressionHandle
	Pattern []uint32
}

func (ExprSwizzle) expressionKind() {}

// ExprCompose constructs a composite value (vector, matrix, array, or struct).
type ExprCompose struct {
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprUnary applies a unary operator to an expression.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator represents unary operations.
type UnaryOperator uint8

const (
	UnaryNegate     UnaryOperator = iota // Arithmetic negation
	UnaryLogicalNot                      // Logical not (!)
	UnaryBitwiseNot                      // Bitwise not (~)
)

// ExprBinary applies a binary operator to two expressions.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	// Arithmetic operations
	BinaryAdd      BinaryOperator = iota // Addition
	BinarySubtract                       // Subtraction
	BinaryMultiply                       // Multiplication, including matrix products
	BinaryDivide                         // Division
	BinaryModulo                         // Remainder with the sign of the dividend

	// Comparison operations
	BinaryEqual        // Equal (==)
	BinaryNotEqual     // Not equal (!=)
	BinaryLess         // Less than (<)
	BinaryLessEqual    // Less than or equal (<=)
	BinaryGreater      // Greater than (>)
	BinaryGreaterEqual // Greater than or equal (>=)

	// Bitwise operations
	BinaryAnd         // Bitwise AND
	BinaryExclusiveOr // Bitwise XOR
	BinaryInclusiveOr // Bitwise OR

	// Logical operations
	BinaryLogicalAnd // Logical AND (&&)
	BinaryLogicalOr  // Logical OR (||)

	// Shift operations
	BinaryShiftLeft  // Left shift (<<)
	BinaryShiftRight // Right shift (>>), arithmetic for signed operands
)

// IsComparison reports whether the operator yields a boolean.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// ExprSelect selects between two values based on a boolean condition.
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprDerivative computes the derivative of an expression.
type ExprDerivative struct {
	Axis    DerivativeAxis
	Control DerivativeControl
	Expr    ExpressionHandle
}

func (ExprDerivative) expressionKind() {}

// DerivativeAxis specifies the axis for derivative computation.
type DerivativeAxis uint8

const (
	DerivativeX     DerivativeAxis = iota // Partial derivative with respect to X
	DerivativeY                           // Partial derivative with respect to Y
	DerivativeWidth                       // Sum of absolute derivatives (fwidth)
)

// DerivativeControl specifies the precision hint for derivative computation.
type DerivativeControl uint8

const (
	DerivativeNone   DerivativeControl = iota // No specific precision
	DerivativeCoarse                          // Coarse precision
	DerivativeFine                            // Fine precision
)

// ExprRelational applies a relational function.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

func (ExprRelational) expressionKind() {}

// RelationalFunction represents built-in relational test functions.
type RelationalFunction uint8

const (
	RelationalAll   RelationalFunction = iota // All components are true
	RelationalAny                             // Any component is true
	RelationalIsNan                           // Test for NaN
	RelationalIsInf                           // Test for infinity
)

// ExprMath applies a built-in function.
type ExprMath struct {
	Fun  MathFunction
	Args []ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction represents built-in mathematical functions.
type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathMin
	MathMax
	MathClamp
	MathCos
	MathCosh
	MathSin
	MathSinh
	MathTan
	MathTanh
	MathAcos
	MathAsin
	MathAtan
	MathAtan2
	MathAsinh
	MathAcosh
	MathAtanh
	MathRadians
	MathDegrees
	MathCeil
	MathFloor
	MathRound
	MathRoundEven
	MathFract
	MathTrunc
	MathExp
	MathExp2
	MathLog
	MathLog2
	MathPow
	MathDot
	MathOuter
	MathCross
	MathDistance
	MathLength
	MathNormalize
	MathFaceForward
	MathReflect
	MathRefract
	MathSign
	MathFma
	MathMix
	MathStep
	MathSmoothStep
	MathSqrt
	MathInverseSqrt
	MathInverse
	MathTranspose
	MathDeterminant
	MathFMod // Floored float modulo: x - y * floor(x / y)
	MathLdexp
	MathFindLSB
	MathFindMSB
	MathBitCount
	MathBitReverse
)

// ExprAs converts an expression to the expression type. Bitcast reinterprets
// the bits; otherwise the value is converted.
type ExprAs struct {
	Expr    ExpressionHandle
	Bitcast bool
}

func (ExprAs) expressionKind() {}

// ExprSampledImage combines a separate image and sampler.
type ExprSampledImage struct {
	Image   ExpressionHandle
	Sampler ExpressionHandle
}

func (ExprSampledImage) expressionKind() {}

// ExprImageSample samples a sampled image.
type ExprImageSample struct {
	SampledImage ExpressionHandle
	Coordinate   ExpressionHandle
	Level        SampleLevel
	DepthRef     *ExpressionHandle
	Offset       *ExpressionHandle
	// Gather is the component to gather, when this is a gather operation.
	Gather *ExpressionHandle
	// Project divides the coordinate by its last component.
	Project bool
}

func (ExprImageSample) expressionKind() {}

// SampleLevel controls the level of detail for texture sampling.
type SampleLevel interface {
	sampleLevel()
}

// SampleLevelAuto uses automatic level of detail.
type SampleLevelAuto struct{}

func (SampleLevelAuto) sampleLevel() {}

// SampleLevelExact uses an explicit level of detail.
type SampleLevelExact struct {
	Level ExpressionHandle
}

func (SampleLevelExact) sampleLevel() {}

// SampleLevelBias uses automatic level of detail with a bias.
type SampleLevelBias struct {
	Bias ExpressionHandle
}

func (SampleLevelBias) sampleLevel() {}

// SampleLevelGradient uses explicit gradients for level of detail.
type SampleLevelGradient struct {
	X ExpressionHandle
	Y ExpressionHandle
}

func (SampleLevelGradient) sampleLevel() {}

// ExprImageLoad loads a texel from an image without sampling.
type ExprImageLoad struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	Sample     *ExpressionHandle // For multisampled images
	Level      *ExpressionHandle // For mipmapped images
	// Storage is true for OpImageRead and false for OpImageFetch.
	Storage bool
}

func (ExprImageLoad) expressionKind() {}

// ExprImageQuery queries information from an image.
type ExprImageQuery struct {
	Image ExpressionHandle
	Query ImageQuery
	Level *ExpressionHandle
}

func (ExprImageQuery) expressionKind() {}

// ImageQuery represents the type of image query.
type ImageQuery uint8

const (
	ImageQuerySize ImageQuery = iota
	ImageQueryNumLevels
	ImageQueryNumSamples
)

// ExprCallResult is the value returned by a StmtCall.
type ExprCallResult struct {
	Function uint32
}

func (ExprCallResult) expressionKind() {}

// ExprArrayLength gets the length of the runtime array that is the last
// member of the struct the pointer refers to.
type ExprArrayLength struct {
	Pointer ExpressionHandle
	Member  uint32
}

func (ExprArrayLength) expressionKind() {}
