//go:build linux

package lease

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/tag"
)

// ValidatePath checks that path is readable and writable, matching the
// original's validate_path (access(path, R_OK|W_OK)). Failure here is
// fatal (§7): the caller should panic before opening the device.
func ValidatePath(op, path string) error {
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return errs.New(op, errs.InvalidParameters, fmt.Errorf("can't access %q: %w", path, err))
	}
	return nil
}

// ValidateIdentity checks id's length and that it does not collide with
// the sentinel's identity prefix (§6 constraints, §7).
func ValidateIdentity(op, id string) error {
	if len(id) > tag.MaxIdentityLen {
		return errs.New(op, errs.InvalidParameters, fmt.Errorf("id %q longer than %d bytes", id, tag.MaxIdentityLen))
	}
	if tag.IsSentinelIdentity(id) {
		return errs.New(op, errs.InvalidParameters, fmt.Errorf("can't lease the free sentinel identity"))
	}
	return nil
}

// ValidateLeaseParams enforces §3's lease parameter bounds: op_max_ms must
// be at least 1000, a multiple of 1000, and no larger than lease_ms.
func ValidateLeaseParams(op string, leaseMs, opMaxMs int64) error {
	if leaseMs <= 0 || opMaxMs <= 0 || leaseMs < opMaxMs || opMaxMs < 1000 || opMaxMs%1000 != 0 {
		return errs.New(op, errs.InvalidParameters,
			fmt.Errorf("bad lease/op max timeouts: lease_ms=%d op_max_ms=%d", leaseMs, opMaxMs))
	}
	return nil
}
