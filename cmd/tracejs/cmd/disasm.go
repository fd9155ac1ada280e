package cmd

import (
	"fmt"

	"github.com/markab/tracejs/internal/compiler"
	"github.com/markab/tracejs/internal/emitter"
	"github.com/markab/tracejs/internal/optinfo"
	"github.com/markab/tracejs/internal/parser"
	"github.com/spf13/cobra"
)

var disasmEval string

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Compile JavaScript source and print its disassembled bytecode",
	Long: `Compile a JavaScript program and print the stack-machine
instructions the method generator emitted for the top-level chunk and
every function, for debugging the compiler and emitter.

Examples:
  tracejs disasm script.js
  tracejs disasm -e "function f(x) { return x + 1; } f(2);"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)

	disasmCmd.Flags().StringVarP(&disasmEval, "eval", "e", "", "compile inline source instead of reading from a file")
}

func runDisasm(cmd *cobra.Command, args []string) error {
	source, name, err := readSource(disasmEval, args)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	prog, hints, err := parser.Parse(source, name)
	if err != nil {
		return err
	}

	c := compiler.New(name)
	result, err := c.CompileProgram(prog, strict, optinfo.Hints(hints))
	if err != nil {
		return err
	}

	fmt.Println("== <main> ==")
	disassemble(result.Chunk)
	for fname, entry := range result.Functions {
		fmt.Printf("\n== %s ==\n", fname)
		disassemble(entry.Chunk)
	}
	return nil
}

func disassemble(chunk *emitter.Chunk) {
	for i, instr := range chunk.Instructions {
		fmt.Printf("%4d  %-16s A=%-4d B=%d\n", i, opName(instr.Op), instr.A, instr.B)
	}
}

// opName names an OpCode for disassembly output. internal/emitter
// deliberately carries no String method of its own (nothing in the
// package needs one outside this debug command), so the name table
// lives here instead.
func opName(op emitter.OpCode) string {
	names := [...]string{
		"LoadConst", "LoadUndefined", "LoadNull", "LoadTrue", "LoadFalse",
		"LoadLocal", "StoreLocal", "LoadArg", "StoreArg", "LoadGlobal", "StoreGlobal",
		"LoadField", "StoreField", "LoadIndexed", "StoreIndexed",
		"Dup", "Pop", "Swap",
		"AddInt", "SubInt", "MulInt", "DivInt", "ModInt", "NegInt",
		"AddDouble", "SubDouble", "MulDouble", "DivDouble", "NegDouble", "Concat", "AddDynamic",
		"BitAnd", "BitOr", "BitXor", "BitNot", "Shl", "Shr", "Sar",
		"CompareEq", "CompareNe", "CompareLt", "CompareLe", "CompareGt", "CompareGe", "LogicalNot",
		"TypeOf", "InstanceOf", "In",
		"Convert", "Box", "ToObject",
		"NewObject", "NewArray", "NewArraySized",
		"Jump", "JumpIfFalse", "JumpIfTrue",
		"Call", "CallMethod", "CallVirtual", "CallAccessor", "CallIntrinsic", "New", "Return",
		"TryEnter", "TryLeave", "Throw", "Rethrow", "Leave",
		"Halt",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("op(%d)", op)
}
