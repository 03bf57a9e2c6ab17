package vm

import "rvm/isa"

// ExecutionStep is one recorded entry in an ExecutionTrace: the instruction
// that ran, the pc it ran at, and which general registers it changed.
type ExecutionStep struct {
	PC      uint32
	Inst    isa.Instruction
	Changed []isa.Register
	HookPC  bool // true if a plugin hook retargeted pc instead of executing
}

// ExecutionTrace records one ExecutionStep per instruction, for the CLI's
// -trace flag. Off by default: a
// MachineContext with a nil Trace pays no recording cost.
type ExecutionTrace struct {
	Steps []ExecutionStep
	Limit int // 0 means unlimited
}

// NewExecutionTrace creates a trace that retains at most limit steps (0 for
// unlimited), discarding the oldest once full.
func NewExecutionTrace(limit int) *ExecutionTrace {
	return &ExecutionTrace{Limit: limit}
}

func (t *ExecutionTrace) append(step ExecutionStep) {
	t.Steps = append(t.Steps, step)
	if t.Limit > 0 && len(t.Steps) > t.Limit {
		t.Steps = t.Steps[len(t.Steps)-t.Limit:]
	}
}

func (t *ExecutionTrace) record(pc uint32, inst isa.Instruction, before, after [isa.NumRegisters]uint64) {
	var changed []isa.Register
	for i := range before {
		if before[i] != after[i] {
			changed = append(changed, isa.Register(i))
		}
	}
	t.append(ExecutionStep{PC: pc, Inst: inst, Changed: changed})
}

func (t *ExecutionTrace) recordHook(pc uint32, inst isa.Instruction) {
	t.append(ExecutionStep{PC: pc, Inst: inst, HookPC: true})
}
