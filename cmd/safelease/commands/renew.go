package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/safelease/internal/lease"
)

var (
	renewRequestPath string
	renewOffset      int64
	renewLastTs      int64
)

var renewCmd = &cobra.Command{
	Use:   "renew <path> <id> <lease_ms> <op_max_ms>",
	Short: "Renew the lease at a sector",
	Long: `Renew reaffirms the caller's lease with a fresh timestamp, guarded
by a self-fence: if the write has not completed when the lease's
remaining window, rounded down to whole seconds, elapses, the process
aborts rather than return. With under one second left no fence is armed.

Always prints the last successful timestamp known to the caller: the
value just written on success, or the seed supplied by --last-ts (or
computed from lease_ms/op_max_ms when --last-ts is omitted) otherwise.`,
	Args: cobra.ExactArgs(4),
	RunE: runRenew,
}

func init() {
	renewCmd.Flags().StringVarP(&renewRequestPath, "request", "r", "", "request file path (accepted, not used)")
	renewCmd.Flags().Int64VarP(&renewOffset, "offset", "o", 0, "lease sector offset")
	renewCmd.Flags().Int64VarP(&renewLastTs, "last-ts", "t", 0, "seed for the caller's last successful timestamp")
}

func runRenew(cmd *cobra.Command, args []string) error {
	const op = "renew"
	path, id := args[0], args[1]
	leaseMs := parseInt64(op, "lease_ms", args[2])
	opMaxMs := parseInt64(op, "op_max_ms", args[3])

	seed := renewLastTs
	if !cmd.Flags().Changed("last-ts") {
		// The caller never renewed before: report a stand-in timestamp
		// (lease_ms - op_max_ms) ms in the past, i.e. op_max_ms before its
		// lease would end. Renew computes msleft from the sector's own
		// timestamp; this seed is only what gets printed on failure.
		seed = time.Now().UnixMicro() - (leaseMs-opMaxMs)*1000
	}

	session, file, err := openSession(op, path, id, renewOffset, leaseMs, opMaxMs)
	if err != nil {
		cmd.Println(seed)
		return err
	}
	defer file.Close()

	outcome, ts, err := session.Renew()
	if err != nil {
		cmd.Println(seed)
		return err
	}

	if outcome != lease.RenewRenewed {
		cmd.Println(seed)
		if outcome == lease.RenewNotHeld {
			return fmt.Errorf("%s: not held", op)
		}
		return fmt.Errorf("%s: timed out", op)
	}

	cmd.Println(ts)
	return nil
}
