//go:build linux

package lease

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/marmos91/safelease/internal/logger"
)

// fence is the self-fencing alarm armed around a renewal write (§4.3
// renew step 5, §9 "Alarm handler as control flow"). If it is not
// disarmed before the alarm fires, the process aborts rather than risk
// writing a fresh timestamp after another host could legitimately have
// already stolen the lease.
//
// The alarm is delivered asynchronously via SIGALRM to a dedicated
// goroutine, independent of whatever goroutine is blocked in the
// renewal's pwrite. This deliberately does not cancel or time out the
// write itself — it removes the whole process from the set of live
// holders, which is the guarantee the protocol needs (§9: "Do not
// replace this with a normal timeout that merely cancels the I/O").
type fence struct {
	sig  chan os.Signal
	done chan struct{}
}

// arm installs the SIGALRM handler and schedules it to fire in seconds.
func (s *Session) arm(seconds uint) *fence {
	f := &fence{
		sig:  make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(f.sig, syscall.SIGALRM)

	go func() {
		select {
		case <-f.sig:
			s.abort("renew: IO op too long")
		case <-f.done:
		}
	}()

	if _, err := unix.Alarm(seconds); err != nil {
		logger.Debug("alarm: failed to arm", "error", err)
	}
	return f
}

// disarm cancels the pending alarm and stops the watcher goroutine. Must
// be called on every renew exit path, successful or not (§4.3 step 7:
// "On any error path, the alarm must be disarmed before returning").
func (f *fence) disarm() {
	unix.Alarm(0)
	signal.Stop(f.sig)
	close(f.done)
}
