//go:build linux

package lease

import (
	"time"

	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/logger"
	"github.com/marmos91/safelease/internal/tag"
)

// RenewOutcome is the result of one Renew call (§4.3).
type RenewOutcome int

const (
	// RenewNotHeld means the sector's identity is not ours.
	RenewNotHeld RenewOutcome = iota
	// RenewTimedOut means our own lease had already expired.
	RenewTimedOut
	// RenewRenewed means the sector now carries a fresh timestamp.
	RenewRenewed
)

// Renew reaffirms the lease at s.offset under s.identity (§4.3). The
// final write is guarded by the self-fence: the alarm is armed for the
// lease's remaining time in whole seconds, rounded down, and if the write
// has not completed when it fires, the process aborts instead of
// returning (§4.3 step 5, §9). With less than one second remaining the
// alarm is armed for 0 seconds, which schedules no alarm, so that write
// is not fenced.
func (s *Session) Renew() (RenewOutcome, uint64, error) {
	curr, err := s.file.ReadTag(s.offset, false)
	if err != nil {
		return RenewNotHeld, 0, errs.New("renew", errs.IO, err)
	}

	if !tag.SameIdentity(curr, s.identity) {
		logger.Debug("renew: not held", "offset", s.offset, "identity", s.identity)
		return RenewNotHeld, 0, nil
	}

	_, ts, err := tag.Parse(curr)
	if err != nil {
		return RenewNotHeld, 0, errs.New("renew", errs.IO, err)
	}

	msLeft := s.leaseMs - elapsedMs(ts)
	if msLeft <= 0 {
		logger.Debug("renew: timed out", "offset", s.offset, "identity", s.identity, "ts", ts)
		return RenewTimedOut, 0, nil
	}

	f := s.arm(uint(msLeft / 1000))
	logger.Debug("renew: updating tag", "offset", s.offset, "identity", s.identity, "ms_left", msLeft)

	newTs, err := s.file.WriteTimestamp(s.offset, s.identity)
	f.disarm()
	if err != nil {
		return RenewNotHeld, 0, errs.New("renew", errs.IO, err)
	}

	return RenewRenewed, newTs, nil
}

// elapsedMs returns the milliseconds elapsed since ts (a microsecond
// Unix timestamp), measured against this host's own wall clock (§3: "the
// holder... whose timestamp is less than lease_ms milliseconds old,
// measured against the host's own wall clock").
func elapsedMs(ts uint64) int64 {
	then := time.UnixMicro(int64(ts))
	return time.Since(then).Milliseconds()
}
