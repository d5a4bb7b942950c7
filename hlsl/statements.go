// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvcross/ir"
)

// =============================================================================
// Statement Writing
// =============================================================================

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
			w.writeLine("GroupMemoryBarrierWithGroupSync();")
		} else {
			w.writeLine("AllMemoryBarrier();")
		}
		return nil

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtImageStore:
		return w.writeImageStore(k)

	case ir.StmtCall:
		return w.writeCall(k)
	}
	return NewError(ErrUnsupportedFeature, "statement %T is not supported", stmt.Kind)
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

// operand returns an expression usable outside an initializer. Struct and
// array values written as brace lists are baked first.
func (w *Writer) operand(handle ir.ExpressionHandle) (string, error) {
	if _, ok := w.baked[handle]; !ok && w.isBraceValue(handle) {
		if err := w.bakeExpression(handle); err != nil {
			return "", err
		}
	}
	return w.expr(handle)
}

// isBraceValue reports whether the text of an expression is a brace list.
func (w *Writer) isBraceValue(handle ir.ExpressionHandle) bool {
	e := w.fn.Expr(handle)
	if !w.module.IsComposite(e.Type) {
		return false
	}
	switch k := e.Kind.(type) {
	case ir.ExprCompose, ir.ExprUndef:
		return true
	case ir.ExprLoad:
		_, ok := w.storageBuffer(k.Pointer)
		return ok
	}
	return false
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
	var gate string
	if len(loop.Continuing) > 0 {
		gate = w.namer.call("loop_init")
		w.writeLine("bool %s = true;", gate)
	}

	w.writeLine("[loop]")
	w.writeLine("while (true) {")
	w.pushIndent()

	if gate != "" {
		w.writeLine("if (!%s) {", gate)
		w.pushIndent()
		if err := w.writeBlock(loop.Continuing); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("%s = false;", gate)
	}

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
	value, err := w.operand(*ret.Value)
	if err != nil {
		return err
	}
	w.writeLine("return %s;", value)
	return nil
}

// writeStore writes an assignment through a pointer. Stores into storage
// buffers become Store calls on the byte address buffer.
func (w *Writer) writeStore(store ir.StmtStore) error {
	if v, ok := w.storageBuffer(store.Pointer); ok {
		valueType := w.fn.Expr(store.Value).Type
		if _, baked := w.baked[store.Value]; !baked && (w.module.IsComposite(valueType) || w.isMatrix(valueType)) {
			if err := w.bakeExpression(store.Value); err != nil {
				return err
			}
		}
		value, err := w.expr(store.Value)
		if err != nil {
			return err
		}
		addr, err := w.storageAddress(store.Pointer, v)
		if err != nil {
			return err
		}
		return w.storageStore(addr, value)
	}

	pointer, err := w.expr(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.operand(store.Value)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeImageStore writes a storage image write. The value is narrowed to
// the component count of the image format.
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
	if t := w.imageType(store.Image); t != nil {
		n, _ := formatComponents(t.Image.Format)
		if vt := w.module.Types[w.fn.Expr(store.Value).Type]; vt != nil && vt.Kind == ir.TypeVector && vt.Count > n {
			value = fmt.Sprintf("%s.%s", value, components[:n])
		}
	}
	w.writeLine("%s[%s] = %s;", image, coord, value)
	return nil
}

// writeCall writes a function call, binding the result to a temporary when
// the call returns a used value. Combined image arguments pass their
// texture and sampler separately.
func (w *Writer) writeCall(call ir.StmtCall) error {
	args := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		if t := w.module.Types[w.fn.Expr(arg).Type]; t != nil && t.Kind == ir.TypeSampledImage {
			tex, sampler, err := w.textureAndSampler(arg)
			if err != nil {
				return err
			}
			args = append(args, tex, sampler)
			continue
		}
		if _, ok := w.storageBuffer(arg); ok {
			return NewError(ErrUnsupportedFeature, "storage buffer pointers cannot be passed to functions")
		}
		s, err := w.operand(arg)
		if err != nil {
			return err
		}
		args = append(args, s)
	}
	callee, ok := w.names[call.Function]
	if !ok {
		return NewErrorAt(ErrInternalError, call.Function, "call to undeclared function")
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
