package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/safelease/cmd/safelease/commands"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan int, 1)
	go func() { done <- run() }()

	select {
	case code := <-done:
		os.Exit(code)
	case <-sigCh:
		// Orderly termination (§5): exit immediately, status 0. The
		// sector may still hold a live lease; releasing it is the
		// caller's responsibility, not this process's.
		os.Exit(0)
	}
}

// run executes the command tree and maps its outcome to an exit status
// (§6, §7): 0 success, 1 a reported failure (io-error, lost, not-held,
// deadline-exceeded), -1 a fatal panic (invalid-parameters). The renew
// self-fence does not pass through here: it exits -1 directly from its
// own goroutine.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "safelease:", r)
			code = -1
		}
	}()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "safelease:", err)
		return 1
	}
	return 0
}
