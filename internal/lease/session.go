// Package lease implements the lease state machine: acquire, renew,
// release, and query, over a single 512-byte sector (§4.3).
//
// All state lives in a Session for the duration of one CLI invocation
// (§3 "Session state"); the package holds no package-level mutable state,
// unlike the original C implementation's global id/path/lease_ms/op_max_ms
// (§9 "Global mutable state" design note).
package lease

import (
	"os"
	"time"

	"github.com/marmos91/safelease/internal/logger"
	"github.com/marmos91/safelease/internal/sectorio"
)

// Session is the in-memory state for one lease operation: the open sector
// file, the chosen offset, the caller's identity, and the lease timing
// parameters (§3).
type Session struct {
	file     *sectorio.File
	offset   int64
	identity string
	leaseMs  int64
	opMaxMs  int64

	// abort is invoked by the renew self-fence when the alarm fires
	// before the renewal write completes. It defaults to a real process
	// abort; tests substitute a recording stub so they never actually
	// exit.
	abort func(reason string)
}

// NewSession constructs a Session bound to an already-open sector file.
// leaseMs and opMaxMs must already satisfy the bounds in §3/§7; callers
// validate with ValidateLeaseParams before calling NewSession.
func NewSession(file *sectorio.File, offset int64, identity string, leaseMs, opMaxMs int64) *Session {
	return &Session{
		file:     file,
		offset:   offset,
		identity: identity,
		leaseMs:  leaseMs,
		opMaxMs:  opMaxMs,
		abort:    defaultAbort,
	}
}

// backoffDelay is the constant wait between re-reads while waiting for a
// stalled holder to be declared dead (§4.3): long enough that the holder
// would have renewed at least once, plus margin for six worst-case I/Os.
func (s *Session) backoffDelay() time.Duration {
	return time.Duration(s.leaseMs+6*s.opMaxMs) * time.Millisecond
}

// contendDelay is how long a contender waits after writing its candidate
// tag before re-reading to see whether it survived (§4.3): long enough
// that any racing writer's own write has certainly completed.
func (s *Session) contendDelay() time.Duration {
	return time.Duration(2*s.opMaxMs) * time.Millisecond
}

func defaultAbort(reason string) {
	logger.Error(reason)
	// Negative exit codes are truncated to an 8-bit status by the OS,
	// matching the original's panic-then-exit(-1) handler (§7).
	os.Exit(-1)
}
