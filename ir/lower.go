package ir

import (
	"github.com/gogpu/spvcross/spirv"
)

// FunctionBody is a function lowered to an expression arena and a
// structured statement tree.
type FunctionBody struct {
	Function    *Function
	Expressions []Expression
	Locals      []LocalVariable
	Body        Block
}

// Expr returns the expression behind a handle.
func (b *FunctionBody) Expr(h ExpressionHandle) *Expression {
	return &b.Expressions[h]
}

// LocalVariable is a function-scope variable. Besides the OpVariables of the
// function, phi results and values used outside their defining block are
// carried in locals.
type LocalVariable struct {
	ID   uint32
	Type uint32 // value type
	// Init is the id of a constant or global initializer, or zero.
	Init uint32
}

// lowerer turns the blocks of one function into a FunctionBody.
type lowerer struct {
	m    *Module
	fn   *Function
	body *FunctionBody

	values   map[uint32]ExpressionHandle
	locals   map[uint32]ExpressionHandle
	baked    map[ExpressionHandle]bool
	defBlock map[uint32]uint32
	uses     map[uint32]int
	useIn    map[uint32]map[uint32]struct{}
	hoisted  map[uint32]bool
	phis     map[uint32][]spirv.Instruction
	visited  map[uint32]bool

	constructs []construct
}

// construct is a loop or switch that break and continue can target.
type construct struct {
	loop   bool
	header uint32
	merge  uint32
	cont   uint32
}

// Lower converts fn into structured statements.
//
// Values are written inline at their single use unless they must be
// evaluated at a fixed point: loads, values with several uses and struct or
// array composites are emitted into temporaries. Values used outside their
// defining block are stored into function-scope locals, as are phi results.
func (m *Module) Lower(fn *Function) (*FunctionBody, error) {
	if len(fn.Blocks) == 0 {
		return nil, errorAt(ErrInvalidModule, fn.ID, "function has no body")
	}
	lw := &lowerer{
		m:        m,
		fn:       fn,
		body:     &FunctionBody{Function: fn},
		values:   make(map[uint32]ExpressionHandle),
		locals:   make(map[uint32]ExpressionHandle),
		baked:    make(map[ExpressionHandle]bool),
		defBlock: make(map[uint32]uint32),
		uses:     make(map[uint32]int),
		useIn:    make(map[uint32]map[uint32]struct{}),
		hoisted:  make(map[uint32]bool),
		phis:     make(map[uint32][]spirv.Instruction),
		visited:  make(map[uint32]bool),
	}
	lw.analyze()
	if err := lw.declare(); err != nil {
		return nil, err
	}
	body, err := lw.region(fn.Blocks[0].Label, 0)
	if err != nil {
		return nil, err
	}
	lw.body.Body = body
	return lw.body, nil
}

// analyze records where each value is defined and used.
func (lw *lowerer) analyze() {
	entry := lw.fn.Blocks[0].Label
	for _, p := range lw.fn.Params {
		lw.defBlock[p.ID] = entry
	}
	for _, v := range lw.fn.Locals {
		lw.defBlock[v.ID] = entry
	}

	var defs []spirv.Instruction
	for _, b := range lw.fn.Blocks {
		for _, inst := range b.Instructions {
			if _, hasResult := inst.Opcode.ResultShape(); hasResult && len(inst.Words) > 1 {
				lw.defBlock[inst.Words[1]] = b.Label
				defs = append(defs, inst)
			}
		}
	}

	for _, b := range lw.fn.Blocks {
		for _, inst := range b.Instructions {
			if inst.Opcode == spirv.OpPhi {
				// A phi operand is used at the end of its parent block.
				for i := 2; i+1 < len(inst.Words); i += 2 {
					lw.use(inst.Words[i], inst.Words[i+1])
				}
				continue
			}
			for _, id := range valueOperands(inst) {
				lw.use(id, b.Label)
			}
		}
		for _, id := range valueOperands(b.Terminator) {
			lw.use(id, b.Label)
		}
	}

	// Opaque values and pointers are rewritten at each use, so their own
	// operands are effectively used wherever they are.
	for i := len(defs) - 1; i >= 0; i-- {
		inst := defs[i]
		r := inst.Words[1]
		if !lw.m.IsOpaque(inst.Words[0]) {
			continue
		}
		for _, id := range valueOperands(inst) {
			if _, local := lw.defBlock[id]; !local {
				continue
			}
			if lw.useIn[id] == nil {
				lw.useIn[id] = make(map[uint32]struct{})
			}
			for block := range lw.useIn[r] {
				lw.useIn[id][block] = struct{}{}
			}
		}
	}

	for _, inst := range defs {
		r := inst.Words[1]
		if inst.Opcode == spirv.OpPhi || lw.m.IsOpaque(inst.Words[0]) {
			continue
		}
		for block := range lw.useIn[r] {
			if block != lw.defBlock[r] {
				lw.hoisted[r] = true
				break
			}
		}
	}
}

func (lw *lowerer) use(id, block uint32) {
	if _, local := lw.defBlock[id]; !local {
		return
	}
	lw.uses[id]++
	if lw.useIn[id] == nil {
		lw.useIn[id] = make(map[uint32]struct{})
	}
	lw.useIn[id][block] = struct{}{}
}

// declare creates the expressions for parameters and locals.
func (lw *lowerer) declare() error {
	for i, p := range lw.fn.Params {
		lw.values[p.ID] = lw.add(ExprFunctionArgument{Index: uint32(i)}, p.Type, p.ID)
	}
	for _, v := range lw.fn.Locals {
		t := lw.m.Types[v.Type]
		if t == nil || t.Kind != TypePointer {
			return errorAt(ErrInvalidModule, v.ID, "variable type is not a pointer")
		}
		lw.body.Locals = append(lw.body.Locals, LocalVariable{ID: v.ID, Type: t.Elem, Init: v.Initializer})
		h := lw.add(ExprLocalVariable{Variable: v.ID}, t.Elem, v.ID)
		lw.values[v.ID] = h
		lw.locals[v.ID] = h
	}
	for _, b := range lw.fn.Blocks {
		for _, inst := range b.Instructions {
			switch {
			case inst.Opcode == spirv.OpPhi:
				lw.phis[b.Label] = append(lw.phis[b.Label], inst)
				local := lw.local(inst.Words[1], inst.Words[0])
				lw.values[inst.Words[1]] = lw.add(ExprLoad{Pointer: local}, inst.Words[0], 0)
			case len(inst.Words) > 1 && lw.hoisted[inst.Words[1]]:
				lw.local(inst.Words[1], inst.Words[0])
			}
		}
	}
	return nil
}

// local returns the variable holding id, declaring it on first use.
func (lw *lowerer) local(id, typ uint32) ExpressionHandle {
	if h, ok := lw.locals[id]; ok {
		return h
	}
	lw.body.Locals = append(lw.body.Locals, LocalVariable{ID: id, Type: typ})
	h := lw.add(ExprLocalVariable{Variable: id}, typ, id)
	lw.locals[id] = h
	return h
}

func (lw *lowerer) add(kind ExpressionKind, typ, id uint32) ExpressionHandle {
	h := ExpressionHandle(len(lw.body.Expressions))
	lw.body.Expressions = append(lw.body.Expressions, Expression{Kind: kind, Type: typ, ID: id})
	return h
}

// value returns the expression for an operand id.
func (lw *lowerer) value(id uint32) (ExpressionHandle, error) {
	if h, ok := lw.values[id]; ok {
		return h, nil
	}
	if c := lw.m.Constants[id]; c != nil {
		h := lw.add(ExprConstant{Constant: id}, c.Type, id)
		lw.values[id] = h
		return h, nil
	}
	if g := lw.m.Global(id); g != nil {
		h := lw.add(ExprGlobalVariable{Variable: id}, lw.m.Pointee(g.Type), id)
		lw.values[id] = h
		return h, nil
	}
	return 0, errorAt(ErrInvalidID, id, "value used before its definition")
}

func (lw *lowerer) valueList(ids []uint32) ([]ExpressionHandle, error) {
	out := make([]ExpressionHandle, len(ids))
	for i, id := range ids {
		h, err := lw.value(id)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

// place records the expression for result id r and fixes its evaluation
// point when needed.
func (lw *lowerer) place(out *Block, op spirv.OpCode, resultType, r uint32, h ExpressionHandle) {
	typ := lw.body.Expressions[h].Type
	switch {
	case lw.hoisted[r]:
		local := lw.local(r, typ)
		out.add(StmtStore{Pointer: local, Value: h})
		lw.values[r] = lw.add(ExprLoad{Pointer: local}, typ, 0)
		return
	case lw.uses[r] == 0 || lw.m.IsOpaque(resultType):
	case op == spirv.OpLoad, lw.uses[r] > 1,
		op == spirv.OpCompositeConstruct && lw.m.IsComposite(typ):
		out.add(StmtEmit{Expr: h})
		lw.baked[h] = true
	}
	lw.values[r] = h
}

func (b *Block) add(kind StatementKind) {
	*b = append(*b, Statement{Kind: kind})
}

// instructions lowers the non-terminator instructions of a block.
func (lw *lowerer) instructions(out *Block, b *BasicBlock) error {
	for _, inst := range b.Instructions {
		if err := lw.instruction(out, inst); err != nil {
			return err
		}
	}
	return nil
}

//nolint:gocyclo,cyclop,funlen // one case per statement-producing opcode
func (lw *lowerer) instruction(out *Block, inst spirv.Instruction) error {
	w := inst.Words
	switch inst.Opcode {
	case spirv.OpPhi, spirv.OpNop, spirv.OpLine, spirv.OpNoLine:
		return nil

	case spirv.OpStore:
		ptr, err := lw.value(w[0])
		if err != nil {
			return err
		}
		v, err := lw.value(w[1])
		if err != nil {
			return err
		}
		out.add(StmtStore{Pointer: ptr, Value: v})
		return nil

	case spirv.OpCopyMemory:
		dst, err := lw.value(w[0])
		if err != nil {
			return err
		}
		src, err := lw.value(w[1])
		if err != nil {
			return err
		}
		v := lw.add(ExprLoad{Pointer: src}, lw.body.Expressions[src].Type, 0)
		out.add(StmtStore{Pointer: dst, Value: v})
		return nil

	case spirv.OpImageWrite:
		ops, err := lw.valueList(w[:3])
		if err != nil {
			return err
		}
		out.add(StmtImageStore{Image: ops[0], Coordinate: ops[1], Value: ops[2]})
		return nil

	case spirv.OpControlBarrier:
		out.add(StmtBarrier{Control: true})
		return nil
	case spirv.OpMemoryBarrier:
		out.add(StmtBarrier{})
		return nil

	case spirv.OpFunctionCall:
		return lw.call(out, inst)

	case spirv.OpCopyObject:
		h, err := lw.value(w[2])
		if err != nil {
			return err
		}
		if lw.hoisted[w[1]] {
			lw.place(out, inst.Opcode, w[0], w[1], h)
			return nil
		}
		lw.values[w[1]] = h
		return nil

	case spirv.OpCompositeInsert, spirv.OpVectorInsertDynamic:
		return lw.insert(out, inst)
	}

	h, err := lw.expression(inst)
	if err != nil {
		return err
	}
	lw.place(out, inst.Opcode, w[0], w[1], h)
	return nil
}

func (lw *lowerer) call(out *Block, inst spirv.Instruction) error {
	w := inst.Words
	args, err := lw.valueList(w[3:])
	if err != nil {
		return err
	}
	if lw.m.Function(w[2]) == nil {
		return errorAt(ErrInvalidID, w[2], "call to unknown function")
	}
	stmt := StmtCall{Function: w[2], Arguments: args}
	r := w[1]
	rt := lw.m.Types[w[0]]
	if rt == nil || rt.Kind == TypeVoid || (lw.uses[r] == 0 && !lw.hoisted[r]) {
		out.add(stmt)
		return nil
	}
	h := lw.add(ExprCallResult{Function: w[2]}, w[0], r)
	stmt.Result = &h
	out.add(stmt)
	if lw.hoisted[r] {
		local := lw.local(r, w[0])
		out.add(StmtStore{Pointer: local, Value: h})
		lw.values[r] = lw.add(ExprLoad{Pointer: local}, w[0], 0)
		return nil
	}
	lw.baked[h] = true
	lw.values[r] = h
	return nil
}

// insert lowers a composite insertion as a copy into a local followed by a
// store to the inserted element.
func (lw *lowerer) insert(out *Block, inst spirv.Instruction) error {
	w := inst.Words
	typ, r := w[0], w[1]
	var object, composite uint32
	if inst.Opcode == spirv.OpCompositeInsert {
		object, composite = w[2], w[3]
	} else {
		composite, object = w[2], w[3]
	}
	src, err := lw.value(composite)
	if err != nil {
		return err
	}
	obj, err := lw.value(object)
	if err != nil {
		return err
	}
	local := lw.local(r, typ)
	out.add(StmtStore{Pointer: local, Value: src})

	ptr := local
	if inst.Opcode == spirv.OpCompositeInsert {
		cur := typ
		for _, idx := range w[4:] {
			next, ok := lw.m.ComponentType(cur, idx)
			if !ok {
				return errorAt(ErrInvalidModule, r, "index %d out of range", idx)
			}
			ptr = lw.add(ExprAccessIndex{Base: ptr, Index: idx}, next, 0)
			cur = next
		}
	} else {
		index, err := lw.value(w[4])
		if err != nil {
			return err
		}
		elem, _ := lw.m.ComponentType(typ, 0)
		ptr = lw.add(ExprAccess{Base: ptr, Index: index}, elem, 0)
	}
	out.add(StmtStore{Pointer: ptr, Value: obj})
	lw.values[r] = lw.add(ExprLoad{Pointer: local}, typ, 0)
	return nil
}

// phiStores assigns the phi locals of to with the values flowing in from
// from. When several phis are assigned together, values that might read one
// of those locals are first copied to temporaries.
func (lw *lowerer) phiStores(out *Block, from, to uint32) error {
	phis := lw.phis[to]
	if len(phis) == 0 {
		return nil
	}
	type assignment struct{ local, value ExpressionHandle }
	stores := make([]assignment, 0, len(phis))
	for _, phi := range phis {
		w := phi.Words
		found := false
		for i := 2; i+1 < len(w); i += 2 {
			if w[i+1] != from {
				continue
			}
			v, err := lw.value(w[i])
			if err != nil {
				return err
			}
			stores = append(stores, assignment{local: lw.locals[w[1]], value: v})
			found = true
			break
		}
		if !found {
			return errorAt(ErrInvalidModule, w[1], "phi has no value from block %%%d", from)
		}
	}
	if len(stores) > 1 {
		for i := range stores {
			if lw.stable(stores[i].value) {
				continue
			}
			e := lw.body.Expressions[stores[i].value]
			c := lw.add(e.Kind, e.Type, 0)
			out.add(StmtEmit{Expr: c})
			lw.baked[c] = true
			stores[i].value = c
		}
	}
	for _, s := range stores {
		out.add(StmtStore{Pointer: s.local, Value: s.value})
	}
	return nil
}

// stable reports whether an expression is unaffected by stores to locals.
func (lw *lowerer) stable(h ExpressionHandle) bool {
	if lw.baked[h] {
		return true
	}
	switch lw.body.Expressions[h].Kind.(type) {
	case ExprConstant, ExprFunctionArgument, ExprUndef:
		return true
	}
	return false
}

// valueOperands lists the operand words of inst that name values.
func valueOperands(inst spirv.Instruction) []uint32 {
	w := inst.Words
	switch inst.Opcode {
	case spirv.OpCompositeExtract, spirv.OpArrayLength, spirv.OpLoad:
		return slice(w, 2, 3)
	case spirv.OpCompositeInsert, spirv.OpVectorShuffle:
		return slice(w, 2, 4)
	case spirv.OpExtInst:
		return slice(w, 4, len(w))
	case spirv.OpStore, spirv.OpCopyMemory:
		return slice(w, 0, 2)
	case spirv.OpFunctionCall:
		return slice(w, 3, len(w))
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageFetch, spirv.OpImageRead:
		return imageOperands(w, 2, 2)
	case spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageGather, spirv.OpImageDrefGather:
		return imageOperands(w, 2, 3)
	case spirv.OpImageWrite:
		return imageOperands(w, 0, 3)
	case spirv.OpBranchConditional, spirv.OpSwitch, spirv.OpReturnValue:
		return slice(w, 0, 1)
	case spirv.OpVariable, spirv.OpControlBarrier, spirv.OpMemoryBarrier, spirv.OpBranch,
		spirv.OpPhi, spirv.OpUndef:
		return nil
	}
	hasType, hasResult := inst.Opcode.ResultShape()
	start := 0
	if hasType {
		start++
	}
	if hasResult {
		start++
	}
	return slice(w, start, len(w))
}

// imageOperands returns the fixed operands of an image instruction followed
// by the ids after its image operand mask.
func imageOperands(w []uint32, start, fixed int) []uint32 {
	ids := append([]uint32(nil), slice(w, start, start+fixed)...)
	return append(ids, slice(w, start+fixed+1, len(w))...)
}

func slice(w []uint32, lo, hi int) []uint32 {
	if hi > len(w) {
		hi = len(w)
	}
	if lo >= hi {
		return nil
	}
	return w[lo:hi]
}
