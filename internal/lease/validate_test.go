package lease

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateLeaseParams_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		leaseMs int64
		opMaxMs int64
	}{
		{"op_max_ms zero", 60000, 0},
		{"op_max_ms below floor", 60000, 500},
		{"op_max_ms not a multiple of 1000", 60000, 1500},
		{"lease_ms less than op_max_ms", 4000, 5000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateLeaseParams("acquire", c.leaseMs, c.opMaxMs)
			require.Error(t, err)
		})
	}
}

func TestValidateLeaseParams_Accepts(t *testing.T) {
	require.NoError(t, ValidateLeaseParams("acquire", 60000, 5000))
	require.NoError(t, ValidateLeaseParams("acquire", 1000, 1000))
}

func TestValidateIdentity(t *testing.T) {
	require.NoError(t, ValidateIdentity("acquire", "A"))
	require.Error(t, ValidateIdentity("acquire", strings.Repeat("x", 20)))
	require.Error(t, ValidateIdentity("acquire", "------FREE------"))
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sector")
	// Doesn't exist yet: must fail.
	require.Error(t, ValidatePath("acquire", path))
}
