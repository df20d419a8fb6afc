package commands

import (
	"fmt"
	"strconv"

	"github.com/marmos91/safelease/internal/lease"
	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/sectorio"
)

// fatalf panics with an invalid-parameters error. Per the original's
// validation discipline, a bad path/id/lease-parameter is a fatal error
// raised before any device I/O is attempted; main's recover converts this
// into an exit(-1).
func fatalf(op, format string, args ...any) {
	panic(errs.New(op, errs.InvalidParameters, fmt.Errorf(format, args...)))
}

func parseInt64(op, name, s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fatalf(op, "%s %q is not a valid integer: %v", name, s, err)
	}
	return v
}

// openSession validates path, identity, and lease parameters, opens the
// sector file, and returns a ready-to-use session, for acquire and renew.
// Any validation failure panics (fatal, §7); any I/O failure opening the
// device is reported as a plain error (§7 io-error) so the caller can exit
// 1 rather than -1.
func openSession(op, path, identity string, offset, leaseMs, opMaxMs int64) (*lease.Session, *sectorio.File, error) {
	if err := lease.ValidateLeaseParams(op, leaseMs, opMaxMs); err != nil {
		fatalf(op, "%v", err)
	}
	if err := lease.ValidateIdentity(op, identity); err != nil {
		fatalf(op, "%v", err)
	}
	return openSessionFile(op, path, identity, offset, leaseMs, opMaxMs)
}

// openSessionWithIdentity validates path and identity only, for release,
// which the CLI surface (§6) takes no lease timing parameters for and
// which never enforces an I/O deadline.
func openSessionWithIdentity(op, path, identity string, offset int64) (*lease.Session, *sectorio.File, error) {
	if err := lease.ValidateIdentity(op, identity); err != nil {
		fatalf(op, "%v", err)
	}
	return openSessionFile(op, path, identity, offset, 0, 0)
}

// openQuerySession validates path only, for query, which the CLI surface
// (§6) takes no identity.
func openQuerySession(op, path string, offset int64) (*lease.Session, *sectorio.File, error) {
	return openSessionFile(op, path, "", offset, 0, 0)
}

func openSessionFile(op, path, identity string, offset, leaseMs, opMaxMs int64) (*lease.Session, *sectorio.File, error) {
	if err := lease.ValidatePath(op, path); err != nil {
		fatalf(op, "%v", err)
	}

	file, err := sectorio.Open(path, opMaxMs)
	if err != nil {
		return nil, nil, errs.New(op, errs.IO, err)
	}

	return lease.NewSession(file, offset, identity, leaseMs, opMaxMs), file, nil
}
