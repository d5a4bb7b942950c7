// Package fixture builds small SPIR-V modules used by tests across the
// repository. Every builder returns a complete little-endian binary.
package fixture

import (
	"github.com/gogpu/spvcross/spirv"
)

// Fragment returns a fragment shader that declares one resource of every
// category and samples a combined image into its output.
//
// Bindings: globals (set 0, binding 0), particles (0, 1), tex (1, 0),
// samp (1, 1), combined (1, 2), storage (1, 3), subpass (1, 4).
func Fragment() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.AddCapability(spirv.CapabilityInputAttachment)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	f32 := b.AddTypeFloat(32)
	u32 := b.AddTypeInt(32, false)
	i32 := b.AddTypeInt(32, true)
	vec2 := b.AddTypeVector(f32, 2)
	vec4 := b.AddTypeVector(f32, 4)
	mat4 := b.AddTypeMatrix(vec4, 4)

	// uniform Globals { vec4 tint; mat4 transform; } globals;
	globalsType := b.AddTypeStruct(vec4, mat4)
	b.AddName(globalsType, "Globals")
	b.AddMemberName(globalsType, 0, "tint")
	b.AddMemberName(globalsType, 1, "transform")
	b.AddDecorate(globalsType, spirv.DecorationBlock)
	b.AddMemberDecorate(globalsType, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(globalsType, 1, spirv.DecorationOffset, 16)
	b.AddMemberDecorate(globalsType, 1, spirv.DecorationColMajor)
	b.AddMemberDecorate(globalsType, 1, spirv.DecorationMatrixStride, 16)
	globalsPtr := b.AddTypePointer(spirv.StorageClassUniform, globalsType)
	globals := b.AddVariable(globalsPtr, spirv.StorageClassUniform)
	b.AddName(globals, "globals")
	b.AddDecorate(globals, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(globals, spirv.DecorationBinding, 0)

	// buffer Particles { uint count; float values[]; } particles;
	values := b.AddTypeRuntimeArray(f32)
	b.AddDecorate(values, spirv.DecorationArrayStride, 4)
	particlesType := b.AddTypeStruct(u32, values)
	b.AddName(particlesType, "Particles")
	b.AddMemberName(particlesType, 0, "count")
	b.AddMemberName(particlesType, 1, "values")
	b.AddDecorate(particlesType, spirv.DecorationBufferBlock)
	b.AddMemberDecorate(particlesType, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(particlesType, 1, spirv.DecorationOffset, 4)
	particlesPtr := b.AddTypePointer(spirv.StorageClassUniform, particlesType)
	particles := b.AddVariable(particlesPtr, spirv.StorageClassUniform)
	b.AddName(particles, "particles")
	b.AddDecorate(particles, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(particles, spirv.DecorationBinding, 1)

	// push_constant Push { float scale; } push;
	pushType := b.AddTypeStruct(f32)
	b.AddName(pushType, "Push")
	b.AddMemberName(pushType, 0, "scale")
	b.AddDecorate(pushType, spirv.DecorationBlock)
	b.AddMemberDecorate(pushType, 0, spirv.DecorationOffset, 0)
	pushPtr := b.AddTypePointer(spirv.StorageClassPushConstant, pushType)
	push := b.AddVariable(pushPtr, spirv.StorageClassPushConstant)
	b.AddName(push, "push")

	inVec4 := b.AddTypePointer(spirv.StorageClassInput, vec4)
	inVec2 := b.AddTypePointer(spirv.StorageClassInput, vec2)
	outVec4 := b.AddTypePointer(spirv.StorageClassOutput, vec4)
	inColor := b.AddVariable(inVec4, spirv.StorageClassInput)
	b.AddName(inColor, "inColor")
	b.AddDecorate(inColor, spirv.DecorationLocation, 0)
	inUV := b.AddVariable(inVec2, spirv.StorageClassInput)
	b.AddName(inUV, "inUV")
	b.AddDecorate(inUV, spirv.DecorationLocation, 1)
	fragCoord := b.AddVariable(inVec4, spirv.StorageClassInput)
	b.AddName(fragCoord, "gl_FragCoord")
	b.AddDecorate(fragCoord, spirv.DecorationBuiltIn, uint32(spirv.BuiltInFragCoord))
	outColor := b.AddVariable(outVec4, spirv.StorageClassOutput)
	b.AddName(outColor, "outColor")
	b.AddDecorate(outColor, spirv.DecorationLocation, 0)

	image2D := b.AddTypeImage(f32, spirv.Dim2D, 0, 0, 0, 1, spirv.ImageFormatUnknown)
	sampler := b.AddTypeSampler()
	sampled2D := b.AddTypeSampledImage(image2D)
	storage2D := b.AddTypeImage(f32, spirv.Dim2D, 0, 0, 0, 2, spirv.ImageFormatRgba8)
	subpassType := b.AddTypeImage(f32, spirv.DimSubpassData, 0, 0, 0, 2, spirv.ImageFormatUnknown)

	opaque := func(typ uint32, name string, binding uint32) uint32 {
		ptr := b.AddTypePointer(spirv.StorageClassUniformConstant, typ)
		v := b.AddVariable(ptr, spirv.StorageClassUniformConstant)
		b.AddName(v, name)
		b.AddDecorate(v, spirv.DecorationDescriptorSet, 1)
		b.AddDecorate(v, spirv.DecorationBinding, binding)
		return v
	}
	opaque(image2D, "tex", 0)
	opaque(sampler, "samp", 1)
	combined := opaque(sampled2D, "combined", 2)
	opaque(storage2D, "storage", 3)
	subpass := opaque(subpassType, "subpass", 4)
	b.AddDecorate(subpass, spirv.DecorationInputAttachmentIndex, 0)

	counterPtr := b.AddTypePointer(spirv.StorageClassAtomicCounter, u32)
	counter := b.AddVariable(counterPtr, spirv.StorageClassAtomicCounter)
	b.AddName(counter, "counter")

	zero := b.AddConstant(i32, 0)
	uniformVec4 := b.AddTypePointer(spirv.StorageClassUniform, vec4)
	pushF32 := b.AddTypePointer(spirv.StorageClassPushConstant, f32)

	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddName(main, "main")
	b.AddLabel()
	color := b.AddLoad(vec4, inColor)
	uv := b.AddLoad(vec2, inUV)
	tintPtr := b.AddAccessChain(uniformVec4, globals, zero)
	tint := b.AddLoad(vec4, tintPtr)
	si := b.AddLoad(sampled2D, combined)
	texel := b.AddImageSample(spirv.OpImageSampleImplicitLod, vec4, si, uv)
	tinted := b.AddBinaryOp(spirv.OpFMul, vec4, color, tint)
	lit := b.AddBinaryOp(spirv.OpFMul, vec4, tinted, texel)
	scalePtr := b.AddAccessChain(pushF32, push, zero)
	scale := b.AddLoad(f32, scalePtr)
	result := b.AddBinaryOp(spirv.OpVectorTimesScalar, vec4, lit, scale)
	b.AddStore(outColor, result)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelFragment, main, "main", []uint32{inColor, inUV, fragCoord, outColor})
	b.AddExecutionMode(main, spirv.ExecutionModeOriginUpperLeft)
	return b.Build()
}

// Compute returns a compute shader with a local size of 8x4x1 that adds
// one to data.values[gl_GlobalInvocationID.x] four times in a loop.
func Compute() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	boolType := b.AddTypeBool()
	f32 := b.AddTypeFloat(32)
	u32 := b.AddTypeInt(32, false)
	i32 := b.AddTypeInt(32, true)
	uvec3 := b.AddTypeVector(u32, 3)

	values := b.AddTypeRuntimeArray(f32)
	b.AddDecorate(values, spirv.DecorationArrayStride, 4)
	dataType := b.AddTypeStruct(values)
	b.AddName(dataType, "Data")
	b.AddMemberName(dataType, 0, "values")
	b.AddDecorate(dataType, spirv.DecorationBlock)
	b.AddMemberDecorate(dataType, 0, spirv.DecorationOffset, 0)
	dataPtr := b.AddTypePointer(spirv.StorageClassStorageBuffer, dataType)
	data := b.AddVariable(dataPtr, spirv.StorageClassStorageBuffer)
	b.AddName(data, "data")
	b.AddDecorate(data, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(data, spirv.DecorationBinding, 0)

	gidPtr := b.AddTypePointer(spirv.StorageClassInput, uvec3)
	gid := b.AddVariable(gidPtr, spirv.StorageClassInput)
	b.AddName(gid, "gl_GlobalInvocationID")
	b.AddDecorate(gid, spirv.DecorationBuiltIn, uint32(spirv.BuiltInGlobalInvocationID))

	zero := b.AddConstant(i32, 0)
	one := b.AddConstant(i32, 1)
	four := b.AddConstant(i32, 4)
	oneF := b.AddConstantFloat32(f32, 1.0)
	localI32 := b.AddTypePointer(spirv.StorageClassFunction, i32)
	elemPtr := b.AddTypePointer(spirv.StorageClassStorageBuffer, f32)

	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddName(main, "main")
	header, body, cont, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()

	b.AddLabel()
	i := b.AddLocalVariable(localI32)
	b.AddName(i, "i")
	b.AddStore(i, zero)
	b.AddBranch(header)

	b.AddLabelID(header)
	iv := b.AddLoad(i32, i)
	cond := b.AddBinaryOp(spirv.OpSLessThan, boolType, iv, four)
	b.AddLoopMerge(merge, cont, spirv.LoopControlNone)
	b.AddBranchConditional(cond, body, merge)

	b.AddLabelID(body)
	id := b.AddLoad(uvec3, gid)
	x := b.AddCompositeExtract(u32, id, 0)
	ptr := b.AddAccessChain(elemPtr, data, zero, x)
	v := b.AddLoad(f32, ptr)
	sum := b.AddBinaryOp(spirv.OpFAdd, f32, v, oneF)
	b.AddStore(ptr, sum)
	b.AddBranch(cont)

	b.AddLabelID(cont)
	iv2 := b.AddLoad(i32, i)
	next := b.AddBinaryOp(spirv.OpIAdd, i32, iv2, one)
	b.AddStore(i, next)
	b.AddBranch(header)

	b.AddLabelID(merge)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelGLCompute, main, "main", []uint32{gid})
	b.AddExecutionMode(main, spirv.ExecutionModeLocalSize, 8, 4, 1)
	return b.Build()
}

// Branches returns a fragment shader with an if/else joined by a phi and a
// switch with a shared case target. It writes to outValue at location 0.
func Branches() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	boolType := b.AddTypeBool()
	f32 := b.AddTypeFloat(32)
	i32 := b.AddTypeInt(32, true)

	inF32 := b.AddTypePointer(spirv.StorageClassInput, f32)
	outF32 := b.AddTypePointer(spirv.StorageClassOutput, f32)
	inValue := b.AddVariable(inF32, spirv.StorageClassInput)
	b.AddName(inValue, "inValue")
	b.AddDecorate(inValue, spirv.DecorationLocation, 0)
	outValue := b.AddVariable(outF32, spirv.StorageClassOutput)
	b.AddName(outValue, "outValue")
	b.AddDecorate(outValue, spirv.DecorationLocation, 0)

	half := b.AddConstantFloat32(f32, 0.5)
	two := b.AddConstantFloat32(f32, 2.0)
	oneF := b.AddConstantFloat32(f32, 1.0)
	threeF := b.AddConstantFloat32(f32, 3.0)

	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddName(main, "main")
	then, els, merge := b.AllocID(), b.AllocID(), b.AllocID()
	caseOne, caseThree, switchMerge := b.AllocID(), b.AllocID(), b.AllocID()

	b.AddLabel()
	x := b.AddLoad(f32, inValue)
	cond := b.AddBinaryOp(spirv.OpFOrdGreaterThan, boolType, x, half)
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddBranchConditional(cond, then, els)

	b.AddLabelID(then)
	doubled := b.AddBinaryOp(spirv.OpFMul, f32, x, two)
	b.AddBranch(merge)

	b.AddLabelID(els)
	bumped := b.AddBinaryOp(spirv.OpFAdd, f32, x, oneF)
	b.AddBranch(merge)

	b.AddLabelID(merge)
	p := b.AddPhi(f32, doubled, then, bumped, els)
	b.AddName(p, "picked")
	b.AddStore(outValue, p)
	sel := b.AddUnaryOp(spirv.OpConvertFToS, i32, p)
	b.AddSelectionMerge(switchMerge, spirv.SelectionControlNone)
	b.AddSwitch(sel, switchMerge, 1, caseOne, 2, caseOne, 3, caseThree)

	b.AddLabelID(caseOne)
	b.AddStore(outValue, oneF)
	b.AddBranch(switchMerge)

	b.AddLabelID(caseThree)
	b.AddStore(outValue, threeF)
	b.AddBranch(switchMerge)

	b.AddLabelID(switchMerge)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelFragment, main, "main", []uint32{inValue, outValue})
	b.AddExecutionMode(main, spirv.ExecutionModeOriginUpperLeft)
	return b.Build()
}

// Vertex returns a vertex shader that transforms inPosition by
// camera.viewProj into the gl_PerVertex block and forwards its xy as outUV.
func Vertex() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	f32 := b.AddTypeFloat(32)
	i32 := b.AddTypeInt(32, true)
	vec2 := b.AddTypeVector(f32, 2)
	vec3 := b.AddTypeVector(f32, 3)
	vec4 := b.AddTypeVector(f32, 4)
	mat4 := b.AddTypeMatrix(vec4, 4)

	cameraType := b.AddTypeStruct(mat4)
	b.AddName(cameraType, "Camera")
	b.AddMemberName(cameraType, 0, "viewProj")
	b.AddDecorate(cameraType, spirv.DecorationBlock)
	b.AddMemberDecorate(cameraType, 0, spirv.DecorationOffset, 0)
	b.AddMemberDecorate(cameraType, 0, spirv.DecorationColMajor)
	b.AddMemberDecorate(cameraType, 0, spirv.DecorationMatrixStride, 16)
	cameraPtr := b.AddTypePointer(spirv.StorageClassUniform, cameraType)
	camera := b.AddVariable(cameraPtr, spirv.StorageClassUniform)
	b.AddName(camera, "camera")
	b.AddDecorate(camera, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(camera, spirv.DecorationBinding, 0)

	perVertex := b.AddTypeStruct(vec4)
	b.AddName(perVertex, "gl_PerVertex")
	b.AddMemberName(perVertex, 0, "gl_Position")
	b.AddDecorate(perVertex, spirv.DecorationBlock)
	b.AddMemberDecorate(perVertex, 0, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	perVertexPtr := b.AddTypePointer(spirv.StorageClassOutput, perVertex)
	vertexOut := b.AddVariable(perVertexPtr, spirv.StorageClassOutput)

	inVec3 := b.AddTypePointer(spirv.StorageClassInput, vec3)
	outVec2 := b.AddTypePointer(spirv.StorageClassOutput, vec2)
	inPosition := b.AddVariable(inVec3, spirv.StorageClassInput)
	b.AddName(inPosition, "inPosition")
	b.AddDecorate(inPosition, spirv.DecorationLocation, 0)
	outUV := b.AddVariable(outVec2, spirv.StorageClassOutput)
	b.AddName(outUV, "outUV")
	b.AddDecorate(outUV, spirv.DecorationLocation, 0)

	zero := b.AddConstant(i32, 0)
	oneF := b.AddConstantFloat32(f32, 1.0)
	uniformMat4 := b.AddTypePointer(spirv.StorageClassUniform, mat4)
	outVec4 := b.AddTypePointer(spirv.StorageClassOutput, vec4)

	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddName(main, "main")
	b.AddLabel()
	pos := b.AddLoad(vec3, inPosition)
	px := b.AddCompositeExtract(f32, pos, 0)
	py := b.AddCompositeExtract(f32, pos, 1)
	pz := b.AddCompositeExtract(f32, pos, 2)
	pos4 := b.AddCompositeConstruct(vec4, px, py, pz, oneF)
	mvpPtr := b.AddAccessChain(uniformMat4, camera, zero)
	mvp := b.AddLoad(mat4, mvpPtr)
	clip := b.AddBinaryOp(spirv.OpMatrixTimesVector, vec4, mvp, pos4)
	posPtr := b.AddAccessChain(outVec4, vertexOut, zero)
	b.AddStore(posPtr, clip)
	uv := b.AddVectorShuffle(vec2, pos, pos, []uint32{0, 1})
	b.AddStore(outUV, uv)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelVertex, main, "main", []uint32{inPosition, vertexOut, outUV})
	return b.Build()
}

// RayGen returns a module whose only entry point is a ray generation shader.
func RayGen() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_4)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelRayGenerationKHR, main, "raygen", nil)
	return b.Build()
}

// Empty returns a module with no entry points and no resources.
func Empty() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	b.AddTypeVoid()
	return b.Build()
}

// InvalidName returns a compute shader whose entry point name is not
// valid UTF-8.
func InvalidName() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	void := b.AddTypeVoid()
	fnType := b.AddTypeFunction(void)
	main := b.AddFunction(fnType, void, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(spirv.ExecutionModelGLCompute, main, "ma\xffin", nil)
	b.AddExecutionMode(main, spirv.ExecutionModeLocalSize, 1, 1, 1)
	return b.Build()
}
