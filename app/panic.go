package app

import (
	"fmt"
	"strings"

	"acorn/acornos/kernel"
	"acorn/acornos/services/logger"
	"acorn/acornos/services/term"
	"acorn/hal"
)

func installPanicHandler(h hal.HAL, svc *logger.Service, log logger.Logger) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		name := info.Name
		if name == "" {
			name = "<unnamed>"
		}
		log.Error("coroutine panic",
			logger.String("coroutine", name),
			logger.Int("label", int(info.Label)),
			logger.Stringer("status", info.Status),
			logger.String("value", fmt.Sprint(info.Value)))
		// The logger coroutine will not run again.
		svc.Flush()

		lines := []string{
			"coroutine: " + name,
			fmt.Sprintf("label: %d", info.Label),
			fmt.Sprintf("panic: %v", info.Value),
		}
		if len(info.Stack) > 0 {
			lines = append(lines, "stack:")
			lines = append(lines, strings.Split(string(info.Stack), "\n")...)
		} else {
			lines = append(lines, "stack: unavailable")
		}
		if l := h.Logger(); l != nil {
			for _, line := range lines[3:] {
				if line != "" {
					l.WriteLineString(line)
				}
			}
		}
		term.Paint(h.Display(), "acorn panic", lines...)
	})
}
