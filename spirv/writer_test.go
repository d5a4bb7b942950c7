package spirv

import (
	"encoding/binary"
	"testing"
)

func TestModuleBuilder_MinimalModule(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := builder.Build()

	// Header (5 words = 20 bytes) + OpCapability (2) + OpMemoryModel (3)
	if len(data) != 40 {
		t.Fatalf("Module size: got %d bytes, want 40", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		t.Errorf("Invalid magic number: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	expectedVersion := uint32(1<<16 | 3<<8) // Version 1.3
	if version != expectedVersion {
		t.Errorf("Invalid version: got 0x%08X, want 0x%08X", version, expectedVersion)
	}

	bound := binary.LittleEndian.Uint32(data[12:16])
	if bound != 1 {
		t.Errorf("Bound: got %d, want 1", bound)
	}

	schema := binary.LittleEndian.Uint32(data[16:20])
	if schema != 0 {
		t.Errorf("Schema should be 0, got %d", schema)
	}
}

func TestModuleBuilder_SectionOrder(t *testing.T) {
	builder := NewModuleBuilder(Version1_0)

	// Added out of layout order on purpose.
	voidType := builder.AddTypeVoid()
	builder.AddName(voidType, "void")
	builder.AddCapability(CapabilityShader)
	builder.AddDecorate(voidType, DecorationRelaxedPrecision)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	module, err := Parse(builder.Build())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []OpCode{OpCapability, OpMemoryModel, OpName, OpDecorate, OpTypeVoid}
	if len(module.Instructions) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(module.Instructions), len(want))
	}
	for i, op := range want {
		if module.Instructions[i].Opcode != op {
			t.Errorf("instruction %d: got %s, want %s", i, module.Instructions[i].Opcode, op)
		}
	}
}

func TestModuleBuilder_AppendRoutesFunctionBodies(t *testing.T) {
	source := NewModuleBuilder(Version1_0)
	source.AddCapability(CapabilityShader)
	source.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	voidType := source.AddTypeVoid()
	funcType := source.AddTypeFunction(voidType)
	floatType := source.AddTypeFloat(32)
	ptrType := source.AddTypePointer(StorageClassFunction, floatType)
	funcID := source.AddFunction(funcType, voidType, FunctionControlNone)
	source.AddLabel()
	source.AddLocalVariable(ptrType)
	source.AddReturn()
	source.AddFunctionEnd()
	source.AddEntryPoint(ExecutionModelFragment, funcID, "main", nil)
	source.AddExecutionMode(funcID, ExecutionModeOriginUpperLeft)

	parsed, err := Parse(source.Build())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rebuilt := NewModuleBuilder(parsed.Header.Version)
	rebuilt.SetBound(parsed.Header.Bound)
	for _, inst := range parsed.Instructions {
		rebuilt.Append(inst)
	}

	reparsed, err := Parse(rebuilt.Build())
	if err != nil {
		t.Fatalf("Parse rebuilt: %v", err)
	}
	if reparsed.Header.Bound != parsed.Header.Bound {
		t.Errorf("Bound: got %d, want %d", reparsed.Header.Bound, parsed.Header.Bound)
	}
	if len(reparsed.Instructions) != len(parsed.Instructions) {
		t.Fatalf("got %d instructions, want %d", len(reparsed.Instructions), len(parsed.Instructions))
	}
	for i := range parsed.Instructions {
		if reparsed.Instructions[i].Opcode != parsed.Instructions[i].Opcode {
			t.Errorf("instruction %d: got %s, want %s", i,
				reparsed.Instructions[i].Opcode, parsed.Instructions[i].Opcode)
		}
	}
}

func TestInstructionBuilder_String(t *testing.T) {
	tests := []struct {
		text  string
		words int
	}{
		{"", 1},
		{"abc", 1},
		{"main", 2},
		{"hello", 2},
		{"12345678", 3},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			builder := NewInstructionBuilder()
			builder.AddString(tt.text)
			inst := builder.Build(OpSourceExtension)

			if len(inst.Words) != tt.words {
				t.Errorf("got %d words, want %d", len(inst.Words), tt.words)
			}
			got, next := inst.LiteralString(0)
			if got != tt.text {
				t.Errorf("decoded %q, want %q", got, tt.text)
			}
			if next != tt.words {
				t.Errorf("next operand %d, want %d", next, tt.words)
			}
		})
	}
}

func TestModuleBuilder_IDAllocation(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	id1 := builder.AllocID()
	id2 := builder.AllocID()
	if id1 == 0 || id2 != id1+1 {
		t.Errorf("IDs should start at 1 and increase: %d, %d", id1, id2)
	}

	builder.SetBound(100)
	if got := builder.AllocID(); got != 100 {
		t.Errorf("AllocID after SetBound(100) = %d, want 100", got)
	}
}
