package msl

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
		w.writeLine("metal::discard_fragment();")
		return nil

	case ir.StmtBarrier:
		if k.Control {
			w.writeLine("metal::threadgroup_barrier(metal::mem_flags::mem_threadgroup);")
		} else {
			w.writeLine("metal::threadgroup_barrier(metal::mem_flags::mem_device | metal::mem_flags::mem_threadgroup);")
		}
		return nil

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtImageStore:
		return w.writeImageStore(k)

	case ir.StmtCall:
		return w.writeCall(k)
	}
	return fmt.Errorf("statement %T is not supported", stmt.Kind)
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
	var gate string
	if len(loop.Continuing) > 0 {
		gate = w.namer.call("loop_init")
		w.writeLine("bool %s = true;", gate)
	}

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

// writeReturn writes a return statement. Returns from the entry point
// hand back the output struct.
func (w *Writer) writeReturn(ret ir.StmtReturn) error {
	if w.inEntry {
		w.writeEntryReturn()
		return nil
	}
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

// writeEntryReturn copies values kept in locals into the output struct and
// returns it.
func (w *Writer) writeEntryReturn() {
	for _, line := range w.epilogue {
		w.writeLine("%s", line)
	}
	if len(w.outputs) > 0 {
		w.writeLine("return out;")
	} else {
		w.writeLine("return;")
	}
}

// writeStore writes an assignment through a pointer. Row-major matrix
// members are stored transposed.
func (w *Writer) writeStore(store ir.StmtStore) error {
	pointer, err := w.expr(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.expr(store.Value)
	if err != nil {
		return err
	}
	if w.isRowMajorPlace(store.Pointer) {
		value = fmt.Sprintf("metal::transpose(%s)", value)
	}
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeImageStore writes a texture write. Metal writes four components, so
// narrower values are padded.
func (w *Writer) writeImageStore(store ir.StmtImageStore) error {
	t := w.imageType(store.Image)
	if t == nil {
		return fmt.Errorf("image store to a non-image value")
	}
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
	valueType := w.fn.Expr(store.Value).Type
	switch n := w.componentCount(valueType); {
	case n == 1:
		value = fmt.Sprintf("%s(%s)", w.vectorName(w.module.Scalar(valueType), 4), value)
	case n < 4:
		value = fmt.Sprintf("%s(%s%s)", w.vectorName(w.module.Scalar(valueType), 4), value, strings.Repeat(", 0", int(4-n)))
	}
	args := append([]string{value}, w.splitCoordinate(t, store.Coordinate, coord, true)...)
	w.writeLine("%s.write(%s);", image, strings.Join(args, ", "))
	return nil
}

// writeCall writes a function call, binding the result to a temporary when
// the call returns a used value. Combined image arguments pass their
// texture and sampler separately, and the globals the callee uses follow
// the arguments.
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
		s, err := w.expr(arg)
		if err != nil {
			return err
		}
		args = append(args, s)
	}
	for _, p := range w.funcParams[call.Function] {
		args = append(args, p.arg)
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
