// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt ir.Statement) error {
	switch k := stmt.Kind.(type) {
	case ir.StmtEmit:
		return w.bakeExpression(k.Expr)

	case ir.StmtIf:
		return w.writeIf(k)

	case ir.StmtSwitch:
		return w.writeSwitch(k)

	case ir.StmtLoop:
		return w.writeLoop(k)

	case ir.StmtBreak:
		w.writeLine("break;")
		return nil

	case ir.StmtContinue:
		w.writeLine("continue;")
		return nil

	case ir.StmtReturn:
		return w.writeReturn(k)

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtBarrier:
		if k.Control {
			w.writeLine("memoryBarrierShared();")
			w.writeLine("barrier();")
		} else {
			w.writeLine("memoryBarrier();")
		}
		return nil

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtImageStore:
		return w.writeImageStore(k)

	case ir.StmtCall:
		return w.writeCall(k)

	default:
		return fmt.Errorf("unsupported statement kind: %T", stmt.Kind)
	}
}

// tempName names the temporary an expression is baked into.
func (w *Writer) tempName(handle ir.ExpressionHandle) string {
	if id := w.fn.Expr(handle).ID; id != 0 {
		return w.idName(id)
	}
	return w.namer.call(fmt.Sprintf("_t%d", handle))
}

// bakeExpression evaluates an expression into a temporary. Later uses of
// the expression refer to the temporary.
func (w *Writer) bakeExpression(handle ir.ExpressionHandle) error {
	value, err := w.expr(handle)
	if err != nil {
		return err
	}
	name := w.tempName(handle)
	w.writeLine("%s = %s;", w.typeDecl(w.fn.Expr(handle).Type, name), value)
	w.baked[handle] = name
	return nil
}

// writeIf writes an if statement.
func (w *Writer) writeIf(ifStmt ir.StmtIf) error {
	condition, err := w.expr(ifStmt.Condition)
	if err != nil {
		return err
	}

	w.writeLine("if (%s) {", condition)
	w.pushIndent()
	if err := w.writeBlock(ifStmt.Accept); err != nil {
		return err
	}
	w.popIndent()

	if len(ifStmt.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(ifStmt.Reject); err != nil {
			return err
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeSwitch writes a switch statement. Case bodies always leave the
// switch, so no break is added.
func (w *Writer) writeSwitch(switchStmt ir.StmtSwitch) error {
	selector, err := w.expr(switchStmt.Selector)
	if err != nil {
		return err
	}
	signed := true
	if s := w.module.Scalar(w.fn.Expr(switchStmt.Selector).Type); s != nil {
		signed = s.Signed
	}

	w.writeLine("switch (%s) {", selector)
	w.pushIndent()

	for _, switchCase := range switchStmt.Cases {
		for _, v := range switchCase.Values {
			if signed {
				w.writeLine("case %d:", int32(v)) //nolint:gosec // G115: literal word
			} else {
				w.writeLine("case %du:", v)
			}
		}
		if switchCase.Default {
			w.writeLine("default:")
		}

		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(switchCase.Body); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeLoop writes a loop statement. A continuing block runs at the top of
// every iteration but the first, so continue statements in the body reach it.
func (w *Writer) writeLoop(loop ir.StmtLoop) error {
	if len(loop.Continuing) == 0 {
		w.writeLine("for (;;) {")
		w.pushIndent()
		if err := w.writeBlock(loop.Body); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil
	}

	gate := w.namer.call("loop_init")
	w.writeLine("bool %s = true;", gate)
	w.writeLine("for (;;) {")
	w.pushIndent()

	w.writeLine("if (!%s) {", gate)
	w.pushIndent()
	if err := w.writeBlock(loop.Continuing); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("%s = false;", gate)

	if err := w.writeBlock(loop.Body); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeReturn writes a return statement.
func (w *Writer) writeReturn(ret ir.StmtReturn) error {
	if ret.Value == nil {
		w.writeLine("return;")
		return nil
	}
	value, err := w.expr(*ret.Value)
	if err != nil {
		return err
	}
	w.writeLine("return %s;", value)
	return nil
}

// writeStore writes an assignment through a pointer.
func (w *Writer) writeStore(store ir.StmtStore) error {
	pointer, err := w.expr(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.expr(store.Value)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeImageStore writes an imageStore call.
func (w *Writer) writeImageStore(store ir.StmtImageStore) error {
	image, err := w.expr(store.Image)
	if err != nil {
		return err
	}
	coord, err := w.expr(store.Coordinate)
	if err != nil {
		return err
	}
	value, err := w.expr(store.Value)
	if err != nil {
		return err
	}
	w.writeLine("imageStore(%s, %s, %s);", image, coord, value)
	return nil
}

// writeCall writes a function call, binding the result to a temporary when
// the call returns a used value.
func (w *Writer) writeCall(call ir.StmtCall) error {
	args := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		s, err := w.expr(arg)
		if err != nil {
			return err
		}
		args[i] = s
	}
	callee, ok := w.names[call.Function]
	if !ok {
		return fmt.Errorf("call to undeclared function %%%d", call.Function)
	}
	invocation := fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))

	if call.Result == nil {
		w.writeLine("%s;", invocation)
		return nil
	}
	name := w.tempName(*call.Result)
	w.writeLine("%s = %s;", w.typeDecl(w.fn.Expr(*call.Result).Type, name), invocation)
	w.baked[*call.Result] = name
	return nil
}
