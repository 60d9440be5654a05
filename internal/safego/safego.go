package safego

import (
	"log"
	"runtime/debug"
)

// Go runs fn on a new goroutine. A panic in fn is written to the logger with
// a stack trace before re-panicking; the curses UI owns the terminal, so a
// bare panic from a background goroutine would otherwise vanish with the
// screen.
func Go(logger *log.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}
