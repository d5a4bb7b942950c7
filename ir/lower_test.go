package ir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvcross/internal/fixture"
	"github.com/gogpu/spvcross/spirv"
)

func kindsOf(b Block) []string {
	out := make([]string, len(b))
	for i, s := range b {
		out[i] = fmt.Sprintf("%T", s.Kind)
	}
	return out
}

func lowerMain(t *testing.T, m *Module) *FunctionBody {
	t.Helper()
	body, err := m.Lower(m.Function(m.EntryPoints[0].Function))
	require.NoError(t, err)
	return body
}

func TestLower_StraightLine(t *testing.T) {
	m := load(t, fixture.Vertex())
	body := lowerMain(t, m)

	assert.Equal(t, []string{
		"ir.StmtEmit", "ir.StmtEmit", "ir.StmtStore", "ir.StmtStore", "ir.StmtReturn",
	}, kindsOf(body.Body))

	// The clip-space position is computed inline at the store.
	store := body.Body[2].Kind.(StmtStore)
	clip := body.Expr(store.Value)
	bin, ok := clip.Kind.(ExprBinary)
	require.True(t, ok)
	assert.Equal(t, BinaryMultiply, bin.Op)

	// The shuffle of one vector becomes a swizzle.
	uv := body.Expr(body.Body[3].Kind.(StmtStore).Value)
	sw, ok := uv.Kind.(ExprSwizzle)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1}, sw.Pattern)
	assert.Empty(t, body.Locals)
}

func TestLower_Loop(t *testing.T) {
	m := load(t, fixture.Compute())
	body := lowerMain(t, m)

	require.Equal(t, []string{"ir.StmtStore", "ir.StmtLoop", "ir.StmtReturn"}, kindsOf(body.Body))
	loop := body.Body[1].Kind.(StmtLoop)

	assert.Equal(t, []string{
		"ir.StmtEmit", "ir.StmtIf", "ir.StmtEmit", "ir.StmtEmit", "ir.StmtStore",
	}, kindsOf(loop.Body))
	exit := loop.Body[1].Kind.(StmtIf)
	assert.Equal(t, []string{"ir.StmtBreak"}, kindsOf(exit.Accept))
	not, ok := body.Expr(exit.Condition).Kind.(ExprUnary)
	require.True(t, ok)
	assert.Equal(t, UnaryLogicalNot, not.Op)

	assert.Equal(t, []string{"ir.StmtEmit", "ir.StmtStore"}, kindsOf(loop.Continuing))

	require.Len(t, body.Locals, 1)
	assert.Equal(t, idOf(t, m, "i"), body.Locals[0].ID)
}

func TestLower_SelectionAndSwitch(t *testing.T) {
	m := load(t, fixture.Branches())
	body := lowerMain(t, m)

	require.Equal(t, []string{
		"ir.StmtEmit", "ir.StmtIf", "ir.StmtStore", "ir.StmtSwitch", "ir.StmtReturn",
	}, kindsOf(body.Body))

	picked := idOf(t, m, "picked")
	require.Len(t, body.Locals, 1)
	assert.Equal(t, picked, body.Locals[0].ID)

	// Each arm assigns the phi local on its way to the merge.
	ifStmt := body.Body[1].Kind.(StmtIf)
	for _, arm := range []Block{ifStmt.Accept, ifStmt.Reject} {
		require.Equal(t, []string{"ir.StmtStore"}, kindsOf(arm))
		ptr := body.Expr(arm[0].Kind.(StmtStore).Pointer)
		assert.Equal(t, ExprLocalVariable{Variable: picked}, ptr.Kind)
	}

	sw := body.Body[3].Kind.(StmtSwitch)
	require.Len(t, sw.Cases, 3)
	assert.Equal(t, []uint32{1, 2}, sw.Cases[0].Values)
	assert.Equal(t, []string{"ir.StmtStore", "ir.StmtBreak"}, kindsOf(sw.Cases[0].Body))
	assert.Equal(t, []uint32{3}, sw.Cases[1].Values)
	assert.True(t, sw.Cases[2].Default)
	assert.Equal(t, []string{"ir.StmtBreak"}, kindsOf(sw.Cases[2].Body))
}

func TestLower_Fragment(t *testing.T) {
	m := load(t, fixture.Fragment())
	body := lowerMain(t, m)

	// color, uv, tint and scale are loads; the sampled image load stays inline.
	assert.Equal(t, []string{
		"ir.StmtEmit", "ir.StmtEmit", "ir.StmtEmit", "ir.StmtEmit", "ir.StmtStore", "ir.StmtReturn",
	}, kindsOf(body.Body))

	var sample *ExprImageSample
	for i := range body.Expressions {
		if s, ok := body.Expressions[i].Kind.(ExprImageSample); ok {
			sample = &s
		}
	}
	require.NotNil(t, sample)
	assert.Equal(t, SampleLevelAuto{}, sample.Level)
	load, ok := body.Expr(sample.SampledImage).Kind.(ExprLoad)
	require.True(t, ok)
	assert.Equal(t, ExprGlobalVariable{Variable: idOf(t, m, "combined")}, body.Expr(load.Pointer).Kind)
}

// hoistModule uses a value loaded in the entry block from two later blocks.
func hoistModule() (data []byte, value uint32) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	boolType := b.AddTypeBool()
	f32 := b.AddTypeFloat(32)
	in := b.AddVariable(b.AddTypePointer(spirv.StorageClassInput, f32), spirv.StorageClassInput)
	out := b.AddVariable(b.AddTypePointer(spirv.StorageClassOutput, f32), spirv.StorageClassOutput)
	zero := b.AddConstantFloat32(f32, 0)

	fn := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	then, merge := b.AllocID(), b.AllocID()
	b.AddLabel()
	v := b.AddLoad(f32, in)
	cond := b.AddBinaryOp(spirv.OpFOrdLessThan, boolType, v, zero)
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddBranchConditional(cond, then, merge)
	b.AddLabelID(then)
	b.AddStore(out, v)
	b.AddBranch(merge)
	b.AddLabelID(merge)
	b.AddStore(out, v)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main", []uint32{in, out})
	return b.Build(), v
}

func TestLower_HoistsCrossBlockValues(t *testing.T) {
	data, v := hoistModule()
	m := load(t, data)
	body := lowerMain(t, m)

	require.Len(t, body.Locals, 1)
	assert.Equal(t, v, body.Locals[0].ID)

	require.Equal(t, []string{"ir.StmtStore", "ir.StmtIf", "ir.StmtStore", "ir.StmtReturn"}, kindsOf(body.Body))
	first := body.Body[0].Kind.(StmtStore)
	assert.Equal(t, ExprLocalVariable{Variable: v}, body.Expr(first.Pointer).Kind)

	ifStmt := body.Body[1].Kind.(StmtIf)
	assert.Equal(t, []string{"ir.StmtStore"}, kindsOf(ifStmt.Accept))
	assert.Empty(t, ifStmt.Reject)
}

func TestLower_UnstructuredBranch(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	boolType := b.AddTypeBool()
	cond := b.AddConstantBool(boolType, true)
	fn := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	left, right := b.AllocID(), b.AllocID()
	b.AddLabel()
	b.AddBranchConditional(cond, left, right)
	b.AddLabelID(left)
	b.AddReturn()
	b.AddLabelID(right)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main", nil)

	m := load(t, b.Build())
	_, err := m.Lower(m.Function(fn))
	var irErr *Error
	require.ErrorAs(t, err, &irErr)
	assert.Equal(t, ErrUnstructured, irErr.Kind)
}

func TestLower_UnsupportedInstruction(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	f32 := b.AddTypeFloat(32)
	set := b.AddExtInstImport("OpenCL.std")
	one := b.AddConstantFloat32(f32, 1)
	fn := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddExtInst(f32, set, 1, one)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main", nil)

	m := load(t, b.Build())
	_, err := m.Lower(m.Function(fn))
	var irErr *Error
	require.ErrorAs(t, err, &irErr)
	assert.True(t, irErr.IsUnsupportedFeature())
}

func TestCallOrder(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)

	helper := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()

	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddFunctionCall(void, helper)
	b.AddFunctionCall(void, helper)
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelGLCompute, main, "main", nil)

	m := load(t, b.Build())
	order, err := m.CallOrder(main)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, helper, order[0].ID)
	assert.Equal(t, main, order[1].ID)

	body, err := m.Lower(order[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"ir.StmtCall", "ir.StmtCall", "ir.StmtReturn"}, kindsOf(body.Body))
}
