//go:build linux

package lease

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/logger"
	"github.com/marmos91/safelease/internal/tag"
)

// AcquireOutcome is the result of one Acquire call (§4.3).
type AcquireOutcome int

const (
	// AcquireLost means another holder is active; no state change.
	AcquireLost AcquireOutcome = iota
	// AcquireWon means we now hold the lease.
	AcquireWon
)

// errStillContested is returned internally by the wait loop's retryable
// step; waitForHolderToDie returns it to Acquire, which never returns it.
var errStillContested = errs.New("acquire", errs.Lost, nil)

// Acquire attempts to acquire the lease at s.offset under s.identity
// (§4.3). If busy is true, it retries indefinitely across contention
// rounds until it wins or hits an I/O error; otherwise it gives up after
// one round. In either mode, a round whose confirming Renew does not
// renew ends the call with AcquireLost.
func (s *Session) Acquire(busy bool) (AcquireOutcome, uint64, error) {
	curr, err := s.file.ReadTag(s.offset, true)
	if err != nil {
		return AcquireLost, 0, errs.New("acquire", errs.IO, err)
	}

	for {
		curr, err = s.waitForHolderToDie(curr, busy)
		if err != nil {
			if err == errStillContested {
				// Non-busy mode: the do-while body ran exactly once
				// and the holder is still live and changing (§9 open
				// question). Give up.
				return AcquireLost, 0, nil
			}
			return AcquireLost, 0, err
		}

		logger.Debug("acquire: contending", "offset", s.offset, "identity", s.identity)

		ts, err := s.file.WriteTimestamp(s.offset, s.identity)
		if err != nil {
			return AcquireLost, 0, errs.New("acquire", errs.IO, err)
		}

		time.Sleep(s.contendDelay())

		confirmed, err := s.file.ReadTag(s.offset, true)
		if err != nil {
			return AcquireLost, 0, errs.New("acquire", errs.IO, err)
		}

		built := tag.Build(s.identity, ts)
		if tag.Same(confirmed, built) {
			logger.Debug("acquire: won", "offset", s.offset, "identity", s.identity, "ts", ts)
			outcome, renewedTs, err := s.Renew()
			if err != nil {
				return AcquireLost, 0, err
			}
			if outcome != RenewRenewed {
				// Our own just-written tag failed its own renew
				// confirmation; treat as lost rather than report a
				// bogus win.
				return AcquireLost, 0, nil
			}
			return AcquireWon, renewedTs, nil
		}

		if !busy {
			return AcquireLost, 0, nil
		}
		curr = confirmed
		// Restart the whole round (§4.3 step 7 restart-from-step-1).
	}
}

// waitForHolderToDie implements §4.3 step 2's do-while: if curr is a live,
// non-free tag, wait backoffDelay and re-read, repeating while busy and
// the tag keeps changing. Two consecutive reads of the identical non-free
// tag, separated by more than one lease period, are evidence the holder
// has stopped refreshing.
//
// The constant re-read interval is driven by cenkalti/backoff's retry
// loop (its naming matches backoff_us directly): ZeroBackOff contributes
// no extra delay of its own since this method owns the exact timing via
// time.Sleep, and WithMaxRetries(0) reproduces the one-shot caller's
// "body runs exactly once" behavior from the original's do-while, whose
// loop condition tests busy only after the first iteration.
func (s *Session) waitForHolderToDie(curr tag.Tag, busy bool) (tag.Tag, error) {
	last := tag.Sentinel
	if tag.Same(curr, last) || tag.IsFree(curr) {
		return curr, nil
	}

	var bo backoff.BackOff = &backoff.ZeroBackOff{}
	if !busy {
		bo = backoff.WithMaxRetries(bo, 0)
	}

	op := func() error {
		last = curr
		time.Sleep(s.backoffDelay())

		var err error
		curr, err = s.file.ReadTag(s.offset, true)
		if err != nil {
			return backoff.Permanent(errs.New("acquire", errs.IO, err))
		}

		if tag.Same(curr, last) || tag.IsFree(curr) {
			return nil
		}
		return errStillContested
	}

	// backoff.Retry unwraps a Permanent error to its cause before
	// returning, so a plain IO *errs.Error surfaces here directly,
	// alongside errStillContested for the one-shot exhausted-retry case.
	if err := backoff.Retry(op, bo); err != nil {
		return curr, err
	}
	return curr, nil
}
