//go:build linux

package lease

import (
	"github.com/marmos91/safelease/internal/lease/errs"
	"github.com/marmos91/safelease/internal/tag"
)

// Record is the printable decoded state of a sector (§4.3 query).
type Record struct {
	Free      bool
	Identity  string
	Timestamp uint64
	TagHex    string
}

// Query reads and decodes the tag at s.offset, without enforcing a
// deadline.
func (s *Session) Query() (Record, error) {
	curr, err := s.file.ReadTag(s.offset, false)
	if err != nil {
		return Record{}, errs.New("query", errs.IO, err)
	}

	id, ts, err := tag.Parse(curr)
	if err != nil {
		return Record{}, errs.New("query", errs.IO, err)
	}

	return Record{
		Free:      tag.IsFree(curr),
		Identity:  id,
		Timestamp: ts,
		TagHex:    curr.Hex(),
	}, nil
}
