package main

import (
	"runtime"

	"github.com/pluxuryv8/astra-bridge/cmd"
	_ "github.com/pluxuryv8/astra-bridge/internal/platform/darwin"
)

// The main goroutine stays on the main OS thread so the dispatcher loop can
// serve thread-bound automation calls.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd.Execute()
}
