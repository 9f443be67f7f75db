package vm

import "github.com/Iansi36283/monty/opcodes"

// profileState is the hot-spot profiler carried over from the teacher's
// vm.profile field: a per-instruction-pointer execution counter used for
// diagnostics, not correctness. The interpreter loop never yields between
// host calls, so this is the only execution-tracing surface available to an
// embedder instead of text logs.
type profileState struct {
	counts         map[int]int
	order          []opcodes.Opcode
	breakpointHits int
}

func newProfileState() *profileState {
	return &profileState{counts: make(map[int]int)}
}

func (p *profileState) observe(ip int, op opcodes.Opcode) {
	p.counts[ip]++
	p.order = append(p.order, op)
}

// HotSpot describes an instruction pointer that was executed frequently,
// mirroring the teacher's vm.HotSpot.
type HotSpot struct {
	IP    int
	Count int
}

// HotSpots returns the n most-executed instruction pointers observed so
// far, most-frequent first.
func (vm *VirtualMachine) HotSpots(n int) []HotSpot {
	out := make([]HotSpot, 0, len(vm.profile.counts))
	for ip, count := range vm.profile.counts {
		out = append(out, HotSpot{IP: ip, Count: count})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Count > out[j-1].Count; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// StepCount reports how many instructions have been dispatched so far.
func (vm *VirtualMachine) StepCount() int { return len(vm.profile.order) }
