package opcodes

import "testing"

func TestStringParseRoundTrip(t *testing.T) {
	ops := []Opcode{
		OpLoadConst, OpAdd, OpFloorDiv, OpBuildSet, OpJumpIfFalse,
		OpLoadAttr, OpCall, OpRaise, OpAwait, OpCallOS,
	}
	for _, op := range ops {
		name := op.String()
		got, ok := Parse(name)
		if !ok {
			t.Fatalf("Parse(%q) not found for opcode %d", name, op)
		}
		if got != op {
			t.Fatalf("Parse(%q) = %d, want %d", name, got, op)
		}
	}
}

func TestUnknownOpcodeStringsFallBack(t *testing.T) {
	var unknown Opcode = 200
	if unknown.String() != "OP(200)" {
		t.Fatalf("unexpected string for unknown opcode: %s", unknown.String())
	}
	if _, ok := Parse("NOT_A_REAL_OPCODE"); ok {
		t.Fatal("expected Parse to fail for unknown mnemonic")
	}
}
