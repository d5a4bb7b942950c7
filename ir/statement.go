package ir

// Statement represents a statement in a lowered function body.
// Statements have side effects and structured control flow, but do not produce values.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
type Block []Statement

// StmtEmit evaluates an expression once at this point. Later uses of the
// expression refer to the evaluated value instead of recomputing it.
type StmtEmit struct {
	Expr ExpressionHandle
}

func (StmtEmit) statementKind() {}

// StmtStore stores a value through a pointer.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtIf conditionally executes one of two blocks based on the condition value.
type StmtIf struct {
	Condition ExpressionHandle // Must be a bool expression
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtSwitch executes the case whose values contain the selector.
// Every case body ends in a statement that leaves it; cases never fall through.
type StmtSwitch struct {
	Selector ExpressionHandle
	Cases    []SwitchCase
}

func (StmtSwitch) statementKind() {}

// SwitchCase is one arm of a switch. Default arms have no values.
type SwitchCase struct {
	Values  []uint32 // literal words, interpreted with the selector's signedness
	Default bool
	Body    Block
}

// StmtLoop executes a block repeatedly.
// Each iteration executes the Body block, followed by the Continuing block.
// Continue statements in Body jump to the Continuing block.
type StmtLoop struct {
	Body       Block
	Continuing Block
}

func (StmtLoop) statementKind() {}

// StmtBreak exits the innermost enclosing Loop or Switch statement.
type StmtBreak struct{}

func (StmtBreak) statementKind() {}

// StmtContinue skips to the continuing block of the innermost enclosing Loop.
type StmtContinue struct{}

func (StmtContinue) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtKill discards the current fragment.
type StmtKill struct{}

func (StmtKill) statementKind() {}

// StmtCall calls a function. Result, when set, is an ExprCallResult that
// holds the returned value after this statement.
type StmtCall struct {
	Function  uint32
	Arguments []ExpressionHandle
	Result    *ExpressionHandle
}

func (StmtCall) statementKind() {}

// StmtImageStore writes a texel to a storage image.
type StmtImageStore struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	Value      ExpressionHandle
}

func (StmtImageStore) statementKind() {}

// StmtBarrier synchronizes invocations of a workgroup. Control is false
// for a memory-only barrier.
type StmtBarrier struct {
	Control bool
}

func (StmtBarrier) statementKind() {}

// IsTerminal reports whether control never continues past the statement.
func IsTerminal(s Statement) bool {
	switch s.Kind.(type) {
	case StmtBreak, StmtContinue, StmtReturn, StmtKill:
		return true
	}
	return false
}
