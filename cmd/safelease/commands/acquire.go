package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/safelease/internal/lease"
)

var (
	acquireRequestPath string
	acquireBusy        bool
	acquireOffset      int64
)

var acquireCmd = &cobra.Command{
	Use:   "acquire <path> <id> <lease_ms> <op_max_ms>",
	Short: "Acquire the lease at a sector",
	Long: `Acquire performs the read-modify-confirm sequence that wins or
loses a single contention round. With --busy it retries indefinitely,
restarting from the wait-for-holder-to-die step each time it loses, until
it wins or hits an I/O error. If the renewal that follows a won round
does not succeed, acquire reports lost even with --busy.`,
	Args: cobra.ExactArgs(4),
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().StringVarP(&acquireRequestPath, "request", "r", "", "request file path (accepted, not used)")
	acquireCmd.Flags().BoolVarP(&acquireBusy, "busy", "b", false, "retry until acquired")
	acquireCmd.Flags().Int64VarP(&acquireOffset, "offset", "o", 0, "lease sector offset")
}

func runAcquire(cmd *cobra.Command, args []string) error {
	const op = "acquire"
	path, id := args[0], args[1]
	leaseMs := parseInt64(op, "lease_ms", args[2])
	opMaxMs := parseInt64(op, "op_max_ms", args[3])

	session, file, err := openSession(op, path, id, acquireOffset, leaseMs, opMaxMs)
	if err != nil {
		return err
	}
	defer file.Close()

	outcome, ts, err := session.Acquire(acquireBusy)
	if err != nil {
		return err
	}
	if outcome != lease.AcquireWon {
		return fmt.Errorf("%s: lost", op)
	}

	cmd.Println(ts)
	return nil
}
