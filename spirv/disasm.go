package spirv

import (
	"fmt"
	"strings"
)

// Disassemble renders a module in .spvasm-like text: a comment header
// followed by one instruction per line, ids printed as %_N.
func Disassemble(m *Module) string {
	var sb strings.Builder

	sb.WriteString("; SPIR-V\n")
	fmt.Fprintf(&sb, "; Version: %s\n", m.Header.Version)
	fmt.Fprintf(&sb, "; Generator: 0x%08X\n", m.Header.Generator)
	fmt.Fprintf(&sb, "; Bound: %d\n", m.Header.Bound)
	fmt.Fprintf(&sb, "; Schema: %d\n", m.Header.Schema)
	sb.WriteString("\n")

	for _, inst := range m.Instructions {
		disassembleInstruction(&sb, inst)
	}
	return sb.String()
}

func id(n uint32) string {
	return fmt.Sprintf("%%_%d", n)
}

type disLine struct {
	sb *strings.Builder
}

func (l *disLine) word(s string) {
	l.sb.WriteByte(' ')
	l.sb.WriteString(s)
}

func (l *disLine) ids(ops []uint32) {
	for _, op := range ops {
		l.word(id(op))
	}
}

func (l *disLine) literals(ops []uint32) {
	for _, op := range ops {
		l.word(fmt.Sprintf("%d", op))
	}
}

func (l *disLine) str(s string) {
	l.word(fmt.Sprintf("%q", s))
}

//nolint:gocyclo,cyclop,funlen // one case per opcode with a special operand layout
func disassembleInstruction(sb *strings.Builder, inst Instruction) {
	ops := inst.Words
	resultType, result := inst.ResultIDs()
	hasType, hasResult := inst.Opcode.ResultShape()

	if hasResult && len(ops) > 0 {
		fmt.Fprintf(sb, "%14s = %s", id(result), inst.Opcode)
	} else {
		fmt.Fprintf(sb, "               %s", inst.Opcode)
	}
	l := &disLine{sb: sb}
	defer sb.WriteByte('\n')

	// Operands after the result type and result id.
	rest := ops
	if hasType && len(rest) > 0 {
		l.word(id(resultType))
		rest = rest[1:]
	}
	if hasResult && len(rest) > 0 {
		rest = rest[1:]
	}

	switch inst.Opcode {
	case OpCapability:
		l.word(Capability(inst.Operand(0)).String())

	case OpExtension:
		s, _ := inst.LiteralString(0)
		l.str(s)

	case OpExtInstImport, OpString:
		s, _ := inst.LiteralString(1)
		l.str(s)

	case OpMemoryModel:
		l.word(lookupName(addressingModelNames, AddressingModel(inst.Operand(0))))
		l.word(lookupName(memoryModelNames, MemoryModel(inst.Operand(1))))

	case OpEntryPoint:
		l.word(ExecutionModel(inst.Operand(0)).String())
		l.word(id(inst.Operand(1)))
		s, next := inst.LiteralString(2)
		l.str(s)
		if next < len(ops) {
			l.ids(ops[next:])
		}

	case OpExecutionMode, OpExecutionModeID:
		l.word(id(inst.Operand(0)))
		l.word(ExecutionMode(inst.Operand(1)).String())
		if len(ops) > 2 {
			l.literals(ops[2:])
		}

	case OpName:
		l.word(id(inst.Operand(0)))
		s, _ := inst.LiteralString(1)
		l.str(s)

	case OpMemberName:
		l.word(id(inst.Operand(0)))
		l.word(fmt.Sprintf("%d", inst.Operand(1)))
		s, _ := inst.LiteralString(2)
		l.str(s)

	case OpDecorate:
		if len(ops) >= 1 {
			l.word(id(ops[0]))
			writeDecoration(l, ops[1:])
		}

	case OpMemberDecorate:
		if len(ops) >= 2 {
			l.word(id(ops[0]))
			l.word(fmt.Sprintf("%d", ops[1]))
			writeDecoration(l, ops[2:])
		}

	case OpTypeInt, OpTypeFloat:
		l.literals(rest)

	case OpTypeVector, OpTypeMatrix:
		l.word(id(inst.Operand(1)))
		l.word(fmt.Sprintf("%d", inst.Operand(2)))

	case OpTypeImage:
		if len(ops) < 8 {
			l.ids(rest)
			break
		}
		l.word(id(inst.Operand(1)))
		l.word(Dim(inst.Operand(2)).String())
		l.literals(ops[3:7])
		l.word(ImageFormat(inst.Operand(7)).String())
		if len(ops) > 8 {
			l.literals(ops[8:])
		}

	case OpTypePointer:
		l.word(StorageClass(inst.Operand(1)).String())
		l.word(id(inst.Operand(2)))

	case OpConstant, OpSpecConstant:
		l.literals(rest)

	case OpVariable:
		l.word(StorageClass(inst.Operand(2)).String())
		if len(ops) > 3 {
			l.ids(ops[3:])
		}

	case OpFunction:
		l.word(functionControlName(FunctionControl(inst.Operand(2))))
		l.word(id(inst.Operand(3)))

	case OpCompositeExtract:
		if len(rest) > 0 {
			l.word(id(rest[0]))
			l.literals(rest[1:])
		}

	case OpCompositeInsert, OpVectorShuffle:
		if len(rest) >= 2 {
			l.ids(rest[:2])
			l.literals(rest[2:])
		}

	case OpExtInst:
		if len(rest) >= 2 {
			l.word(id(rest[0]))
			l.word(fmt.Sprintf("%d", rest[1]))
			l.ids(rest[2:])
		}

	case OpSelectionMerge:
		l.word(id(inst.Operand(0)))
		l.word("None")

	case OpLoopMerge:
		l.word(id(inst.Operand(0)))
		l.word(id(inst.Operand(1)))
		l.word("None")

	case OpSwitch:
		l.word(id(inst.Operand(0)))
		l.word(id(inst.Operand(1)))
		for i := 2; i+1 < len(ops); i += 2 {
			l.word(fmt.Sprintf("%d", ops[i]))
			l.word(id(ops[i+1]))
		}

	default:
		l.ids(rest)
	}
}

func writeDecoration(l *disLine, ops []uint32) {
	if len(ops) == 0 {
		return
	}
	dec := Decoration(ops[0])
	l.word(dec.String())
	if dec == DecorationBuiltIn && len(ops) > 1 {
		l.word(BuiltIn(ops[1]).String())
		return
	}
	l.literals(ops[1:])
}

func functionControlName(fc FunctionControl) string {
	if fc == 0 {
		return "None"
	}
	var parts []string
	for _, f := range []struct {
		bit  FunctionControl
		name string
	}{
		{FunctionControlInline, "Inline"},
		{FunctionControlDontInline, "DontInline"},
		{FunctionControlPure, "Pure"},
		{FunctionControlConst, "Const"},
	} {
		if fc&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
