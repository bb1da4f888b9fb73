package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PanicInfo describes a panic raised by a coroutine body.
type PanicInfo struct {
	Name   string
	Label  Label
	Status Status
	Value  any
	// Stack is nil where the runtime cannot capture one.
	Stack []byte
}

func (p PanicInfo) String() string {
	name := p.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("coroutine %s panicked at label %d: %v", name, p.Label, p.Value)
}

var panics struct {
	once    sync.Once
	raised  atomic.Bool
	handler atomic.Pointer[func(PanicInfo)]
}

// InPanicMode reports whether a body has panicked.
func InPanicMode() bool {
	return panics.raised.Load()
}

// SetPanicHandler installs the process-wide panic handler, or removes it
// when fn is nil. The handler runs once, for the first panic, before the
// panic continues to unwind. It must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	if fn == nil {
		panics.handler.Store(nil)
		return
	}
	panics.handler.Store(&fn)
}

func raisePanic(info PanicInfo) {
	panics.once.Do(func() {
		panics.raised.Store(true)
		info.Stack = captureStack()
		if fn := panics.handler.Load(); fn != nil {
			(*fn)(info)
		}
	})
}
