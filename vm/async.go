// Suspension-aware coroutine/gather scheduling. A Coroutine is a
// specialized, separately-stepped CallFrame stack; `await` drives one to
// completion, transparently forwarding any host suspension up to the
// embedder so host calls stay visible even from inside a coroutine;
// `gather` steps N of them round-robin.
package vm

import (
	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/registry"
	"github.com/Iansi36283/monty/values"
)

// coroutineFrames resolves co.State to the coroutine's private frame stack.
// dispatchCall seeds it with the root frame; nested calls inside the
// coroutine push further frames, which must survive suspension (a host call
// can fire arbitrarily deep inside the coroutine's own call tree).
func coroutineFrames(co *registry.Coroutine) []*CallFrame {
	switch s := co.State.(type) {
	case []*CallFrame:
		return s
	case *CallFrame:
		return []*CallFrame{s}
	}
	return nil
}

// stepCoroutine advances co's frame stack until it either completes, raises,
// or hits a host call. Host calls surface as errSuspend with ctx.Pending set
// to the coroutine's own pending call (its Frame still points inside the
// coroutine's stack, so Resume() threads back into the right place). An
// exception unhandled inside the coroutine is returned as the raw
// *mtyerr.PyError so the awaiting frame's handlers get their chance at it.
func (vm *VirtualMachine) stepCoroutine(ctx *ExecutionContext, co *registry.Coroutine) error {
	if co.Done {
		return co.Err
	}
	saved := ctx.Frames
	ctx.Frames = coroutineFrames(co)
	co.Started = true
	defer func() {
		co.State = ctx.Frames
		ctx.Frames = saved
	}()

	for {
		cur := ctx.currentFrame()
		if cur == nil {
			co.Done = true
			return nil
		}
		if cur.Injected != nil {
			inj := cur.Injected
			cur.Injected = nil
			handled, herr := vm.handleError(ctx, cur, inj)
			if herr != nil {
				co.Done, co.Err = true, herr
				return herr
			}
			if !handled {
				co.Done, co.Err = true, herr
				return herr
			}
			continue
		}
		if cur.IP < 0 || cur.IP >= len(cur.Code.Instructions) {
			if done, err := vm.handleReturn(ctx, values.None()); err != nil {
				co.Done, co.Err = true, err
				return err
			} else if done {
				co.Done = true
				co.Result = ctx.Output
				return nil
			}
			continue
		}
		inst := cur.Code.Instructions[cur.IP]
		if inst.Op == opcodes.OpCallOS || inst.Op == opcodes.OpCallExternal {
			pending, err := vm.prepareHostCall(ctx, cur, inst)
			if err != nil {
				co.Done, co.Err = true, err
				return err
			}
			ctx.Pending = pending
			return errSuspend
		}
		advance, err := vm.executeInstruction(ctx, cur, inst)
		if err == errSuspend {
			return errSuspend
		}
		if err != nil {
			handled, herr := vm.handleError(ctx, cur, err)
			if herr != nil {
				co.Done, co.Err = true, herr
				return herr
			}
			if !handled {
				co.Done, co.Err = true, herr
				return herr
			}
			continue
		}
		if ctx.Halted {
			co.Done = true
			co.Result = ctx.Output
			ctx.Halted = false
			return nil
		}
		if advance {
			cur.IP++
		}
	}
}

// execAwait implements `await coro`: drive it to completion, then push its
// result. A host suspension reached mid-await propagates as errSuspend with
// the awaiting frame's stack restored and its IP still on this AWAIT, so
// resuming re-executes the instruction and re-steps the same coroutine from
// where it left off (Resume() already advanced the coroutine's own inner
// frame past the answered call).
func (vm *VirtualMachine) execAwait(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	coVal := frame.pop()
	if coVal.Kind != values.KindObject || coVal.AsRef().Kind != values.ObjCoroutine {
		return false, mtyerr.TypeErrorf("object %s can't be used in 'await' expression", ctx.Registry.TypeName(coVal))
	}
	co := ctx.Registry.Coroutine(coVal)
	if err := vm.stepCoroutine(ctx, co); err != nil {
		if err == errSuspend {
			frame.push(coVal)
			return false, errSuspend
		}
		return false, err
	}
	frame.push(co.Result)
	return true, nil
}

// execGather implements asyncio.gather(*coros): zero-arg gather returns
// []; otherwise constituents are stepped round-robin in
// registration order, each running until its next host call or completion,
// until all complete or one raises (at which point remaining coroutines'
// pending state is dropped). A host suspension surfaces to the embedder
// with frame.GatherNext recording which constituent to step next, so the
// re-executed instruction resumes the rotation where it stopped instead of
// restarting at the first coroutine. That cursor is what makes host calls
// across constituents interleave deterministically.
func (vm *VirtualMachine) execGather(ctx *ExecutionContext, frame *CallFrame, inst opcodes.Instruction) (bool, error) {
	argsVal := frame.pop()
	if argsVal.Kind != values.KindTuple {
		return false, mtyerr.RuntimeErrorf("YIELD_FROM_GATHER expects a tuple of coroutines")
	}
	coros := argsVal.AsTuple()
	if len(coros) == 0 {
		frame.push(ctx.Registry.NewList(nil))
		return true, nil
	}

	results := make([]values.Value, len(coros))
	done := make([]bool, len(coros))
	remaining := len(coros)
	for i, c := range coros {
		if c.Kind != values.KindObject || c.AsRef().Kind != values.ObjCoroutine {
			continue // non-awaitables raise when reached during scheduling
		}
		// An already-completed coroutine contributes its value directly, no
		// scheduling step required.
		if co := ctx.Registry.Coroutine(c); co.Done {
			results[i] = co.Result
			done[i] = true
			remaining--
		}
	}

	cur := frame.GatherNext
	for remaining > 0 {
		i := cur % len(coros)
		if done[i] {
			cur++
			continue
		}
		c := coros[i]
		if c.Kind != values.KindObject || c.AsRef().Kind != values.ObjCoroutine {
			frame.GatherNext = 0
			return false, mtyerr.TypeErrorf("An asyncio.Future, a coroutine or an awaitable is required")
		}
		co := ctx.Registry.Coroutine(c)
		err := vm.stepCoroutine(ctx, co)
		if err == errSuspend {
			frame.GatherNext = cur + 1
			frame.push(argsVal)
			return false, errSuspend
		}
		if err != nil {
			frame.GatherNext = 0
			return false, err
		}
		if co.Done {
			results[i] = co.Result
			done[i] = true
			remaining--
		}
		cur++
	}
	frame.GatherNext = 0
	frame.push(ctx.Registry.NewList(results))
	return true, nil
}
