package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// region emits the blocks reached from start until control arrives at stop,
// leaves through break, continue or return, or reaches a dead end.
func (lw *lowerer) region(start, stop uint32) (Block, error) {
	var out Block
	label := start
	for {
		b := lw.fn.Block(label)
		if b == nil {
			return nil, errorAt(ErrInvalidID, label, "branch to unknown block")
		}
		if lw.visited[label] {
			return nil, errorAt(ErrUnstructured, label, "block is reached twice")
		}
		lw.visited[label] = true

		var (
			next uint32
			more bool
			err  error
		)
		if b.MergeKind == MergeLoop {
			next, more, err = lw.loop(&out, b, stop)
		} else {
			if err = lw.instructions(&out, b); err != nil {
				return nil, err
			}
			next, more, err = lw.terminator(&out, b, stop)
		}
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
		label = next
	}
}

// loop emits a loop construct whose header is h.
func (lw *lowerer) loop(out *Block, h *BasicBlock, stop uint32) (uint32, bool, error) {
	lw.constructs = append(lw.constructs, construct{loop: true, header: h.Label, merge: h.Merge, cont: h.Continue})

	var body Block
	if err := lw.instructions(&body, h); err != nil {
		return 0, false, err
	}
	next, more, err := lw.terminator(&body, h, h.Continue)
	if err != nil {
		return 0, false, err
	}
	if more {
		rest, err := lw.region(next, h.Continue)
		if err != nil {
			return 0, false, err
		}
		body = append(body, rest...)
	}

	var continuing Block
	if h.Continue != h.Label {
		if continuing, err = lw.region(h.Continue, h.Label); err != nil {
			return 0, false, err
		}
	}
	lw.constructs = lw.constructs[:len(lw.constructs)-1]

	if n := len(body); n > 0 {
		if _, ok := body[n-1].Kind.(StmtContinue); ok {
			body = body[:n-1]
		}
	}
	out.add(StmtLoop{Body: body, Continuing: continuing})
	return lw.follow(out, h.Merge, stop, false)
}

// terminator emits the control flow leaving b. It returns the next block to
// emit in the current region, if control continues there.
//
//nolint:gocyclo,cyclop,funlen // one case per terminator shape
func (lw *lowerer) terminator(out *Block, b *BasicBlock, stop uint32) (uint32, bool, error) {
	term := b.Terminator
	w := term.Words
	switch term.Opcode {
	case spirv.OpReturn:
		out.add(StmtReturn{})
		return 0, false, nil

	case spirv.OpReturnValue:
		v, err := lw.operand(w, 0)
		if err != nil {
			return 0, false, err
		}
		out.add(StmtReturn{Value: &v})
		return 0, false, nil

	case spirv.OpKill:
		out.add(StmtKill{})
		return 0, false, nil

	case spirv.OpUnreachable:
		return 0, false, nil

	case spirv.OpBranch:
		return lw.jump(out, b.Label, w[0], stop, false)

	case spirv.OpBranchConditional:
		cond, err := lw.operand(w, 0)
		if err != nil {
			return 0, false, err
		}
		t, f := w[1], w[2]

		if b.MergeKind == MergeSelection {
			accept, err := lw.arm(b.Label, t, b.Merge)
			if err != nil {
				return 0, false, err
			}
			reject, err := lw.arm(b.Label, f, b.Merge)
			if err != nil {
				return 0, false, err
			}
			out.add(StmtIf{Condition: cond, Accept: accept, Reject: reject})
			return lw.follow(out, b.Merge, stop, false)
		}

		if t == f {
			return lw.jump(out, b.Label, t, stop, false)
		}
		tExit, fExit := lw.isExit(t, stop), lw.isExit(f, stop)
		switch {
		case tExit && fExit:
			accept, err := lw.exit(b.Label, t, stop)
			if err != nil {
				return 0, false, err
			}
			reject, err := lw.exit(b.Label, f, stop)
			if err != nil {
				return 0, false, err
			}
			out.add(StmtIf{Condition: cond, Accept: accept, Reject: reject})
			return 0, false, nil
		case tExit:
			accept, err := lw.exit(b.Label, t, stop)
			if err != nil {
				return 0, false, err
			}
			out.add(StmtIf{Condition: cond, Accept: accept})
			return lw.jump(out, b.Label, f, stop, false)
		case fExit:
			reject, err := lw.exit(b.Label, f, stop)
			if err != nil {
				return 0, false, err
			}
			not := lw.add(ExprUnary{Op: UnaryLogicalNot, Expr: cond}, lw.body.Expressions[cond].Type, 0)
			out.add(StmtIf{Condition: not, Accept: reject})
			return lw.jump(out, b.Label, t, stop, false)
		}
		return 0, false, errorAt(ErrUnstructured, b.Label, "conditional branch without a merge")

	case spirv.OpSwitch:
		return lw.switchStatement(out, b, stop)
	}
	return 0, false, errorAt(ErrInvalidModule, b.Label, "block ends in %s", term.Opcode)
}

// switchStatement emits a selection on an integer. Case targets that share
// a label become one case with several values.
func (lw *lowerer) switchStatement(out *Block, b *BasicBlock, stop uint32) (uint32, bool, error) {
	w := b.Terminator.Words
	if b.MergeKind != MergeSelection {
		return 0, false, errorAt(ErrUnstructured, b.Label, "switch without a selection merge")
	}
	selector, err := lw.operand(w, 0)
	if err != nil {
		return 0, false, err
	}
	if s := lw.m.Scalar(lw.body.Expressions[selector].Type); s != nil && s.Width > 32 {
		return 0, false, errorAt(ErrUnsupportedFeature, b.Label, "%d-bit switch selector", s.Width)
	}

	var targets []uint32
	cases := make(map[uint32]*SwitchCase)
	caseFor := func(target uint32) *SwitchCase {
		if c, ok := cases[target]; ok {
			return c
		}
		c := &SwitchCase{}
		cases[target] = c
		targets = append(targets, target)
		return c
	}
	for i := 2; i+1 < len(w); i += 2 {
		c := caseFor(w[i+1])
		c.Values = append(c.Values, w[i])
	}
	caseFor(w[1]).Default = true

	lw.constructs = append(lw.constructs, construct{merge: b.Merge})
	stmt := StmtSwitch{Selector: selector}
	for _, target := range targets {
		c := cases[target]
		body, err := lw.arm(b.Label, target, b.Merge)
		if err != nil {
			return 0, false, err
		}
		if n := len(body); n == 0 || !IsTerminal(body[n-1]) {
			body.add(StmtBreak{})
		}
		c.Body = body
		stmt.Cases = append(stmt.Cases, *c)
	}
	lw.constructs = lw.constructs[:len(lw.constructs)-1]

	out.add(stmt)
	return lw.follow(out, b.Merge, stop, false)
}

// arm emits the branch from `from` to `to` and the blocks it reaches up to merge.
func (lw *lowerer) arm(from, to, merge uint32) (Block, error) {
	var out Block
	next, more, err := lw.jump(&out, from, to, merge, false)
	if err != nil {
		return nil, err
	}
	if more {
		rest, err := lw.region(next, merge)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

// exit emits a branch that must leave the current region explicitly.
func (lw *lowerer) exit(from, to, stop uint32) (Block, error) {
	var out Block
	_, more, err := lw.jump(&out, from, to, stop, true)
	if err != nil {
		return nil, err
	}
	if more {
		return nil, errorAt(ErrUnstructured, to, "branch does not leave the construct")
	}
	return out, nil
}

// jump emits the phi assignments of the edge from -> to, then follows it.
func (lw *lowerer) jump(out *Block, from, to, stop uint32, explicit bool) (uint32, bool, error) {
	if err := lw.phiStores(out, from, to); err != nil {
		return 0, false, err
	}
	return lw.follow(out, to, stop, explicit)
}

// follow resolves a branch target against the enclosing constructs. It
// reports true when the target is the next block of the current region.
func (lw *lowerer) follow(out *Block, to, stop uint32, explicit bool) (uint32, bool, error) {
	loop := lw.innermostLoop()
	if to == stop && (!explicit || (loop != nil && to == loop.header)) {
		return 0, false, nil
	}
	if n := len(lw.constructs); n > 0 && to == lw.constructs[n-1].merge {
		out.add(StmtBreak{})
		return 0, false, nil
	}
	if loop != nil {
		switch to {
		case loop.cont:
			out.add(StmtContinue{})
			return 0, false, nil
		case loop.merge:
			return 0, false, errorAt(ErrUnsupportedFeature, to, "break out of a loop from inside a switch")
		case loop.header:
			return 0, false, errorAt(ErrUnstructured, to, "back edge outside the continue construct")
		}
	}
	for _, c := range lw.constructs {
		if to == c.merge || (c.loop && to == c.cont) {
			return 0, false, errorAt(ErrUnsupportedFeature, to, "branch out of several constructs")
		}
	}
	if explicit {
		return 0, false, errorAt(ErrUnstructured, to, "branch cannot be expressed as break or continue")
	}
	return to, true, nil
}

// isExit reports whether a branch to `to` leaves the current region.
func (lw *lowerer) isExit(to, stop uint32) bool {
	if to == stop {
		return true
	}
	if n := len(lw.constructs); n > 0 && to == lw.constructs[n-1].merge {
		return true
	}
	loop := lw.innermostLoop()
	return loop != nil && to == loop.cont
}

func (lw *lowerer) innermostLoop() *construct {
	for i := len(lw.constructs) - 1; i >= 0; i-- {
		if lw.constructs[i].loop {
			return &lw.constructs[i]
		}
	}
	return nil
}

// CallOrder returns the functions reachable from entry with every callee
// ahead of its callers. Recursion is rejected.
func (m *Module) CallOrder(entry uint32) ([]*Function, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[uint32]int)
	var order []*Function
	var visit func(id uint32) error
	visit = func(id uint32) error {
		switch state[id] {
		case visiting:
			return errorAt(ErrUnsupportedFeature, id, "recursive call")
		case done:
			return nil
		}
		fn := m.functions[id]
		if fn == nil {
			return errorAt(ErrInvalidID, id, "not a function")
		}
		state[id] = visiting
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				if inst.Opcode != spirv.OpFunctionCall || len(inst.Words) < 3 {
					continue
				}
				if err := visit(inst.Words[2]); err != nil {
					return err
				}
			}
		}
		state[id] = done
		order = append(order, fn)
		return nil
	}
	if err := visit(entry); err != nil {
		return nil, err
	}
	return order, nil
}
