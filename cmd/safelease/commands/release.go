package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/safelease/internal/lease"
)

var (
	releaseForce  bool
	releaseOffset int64
)

var releaseCmd = &cobra.Command{
	Use:   "release <path> <id>",
	Short: "Release the lease at a sector",
	Long: `Release resets the sector to the free sentinel. Unless --force is
given, it first checks that id is the current holder and leaves the
sector untouched otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().BoolVarP(&releaseForce, "force", "f", false, "release even if identity does not match")
	releaseCmd.Flags().Int64VarP(&releaseOffset, "offset", "o", 0, "lease sector offset")
}

func runRelease(cmd *cobra.Command, args []string) error {
	const op = "release"
	path, id := args[0], args[1]

	session, file, err := openSessionWithIdentity(op, path, id, releaseOffset)
	if err != nil {
		return err
	}
	defer file.Close()

	outcome, err := session.Release(releaseForce)
	if err != nil {
		return err
	}
	if outcome != lease.ReleaseReleased {
		return fmt.Errorf("%s: not held", op)
	}
	return nil
}
