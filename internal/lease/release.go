//go:build linux

package lease

import (
	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/logger"
	"github.com/marmos91/safelease/internal/tag"
)

// ReleaseOutcome is the result of one Release call (§4.3).
type ReleaseOutcome int

const (
	// ReleaseNotHeld means the sector's identity did not match ours and
	// force was not set; the sector is left unchanged.
	ReleaseNotHeld ReleaseOutcome = iota
	// ReleaseReleased means the sector now holds the sentinel.
	ReleaseReleased
)

// Release resets the sector at s.offset to the free sentinel (§4.3).
// Unless force is set, it first checks that our identity is the current
// holder and leaves the sector untouched otherwise. Release is best
// effort cleanup: no I/O deadline is enforced.
func (s *Session) Release(force bool) (ReleaseOutcome, error) {
	if !force {
		curr, err := s.file.ReadTag(s.offset, false)
		if err != nil {
			return ReleaseNotHeld, errs.New("release", errs.IO, err)
		}
		if !tag.SameIdentity(curr, s.identity) {
			logger.Debug("release: not held", "offset", s.offset, "identity", s.identity)
			return ReleaseNotHeld, nil
		}
	}

	if err := s.file.WriteTag(s.offset, tag.Sentinel, false); err != nil {
		return ReleaseNotHeld, errs.New("release", errs.IO, err)
	}
	logger.Debug("release: released", "offset", s.offset, "identity", s.identity, "force", force)
	return ReleaseReleased, nil
}
