package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/safelease/internal/cli/timeutil"
)

var queryOffset int64

var queryCmd = &cobra.Command{
	Use:   "query <path>",
	Short: "Print the current lease record at a sector",
	Long: `Query reads and decodes the tag at the given sector, without
enforcing an I/O deadline, and prints whether it is FREE or LOCKED along
with the holder's identity and timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int64VarP(&queryOffset, "offset", "o", 0, "lease sector offset")
}

func runQuery(cmd *cobra.Command, args []string) error {
	const op = "query"
	path := args[0]

	session, file, err := openQuerySession(op, path, queryOffset)
	if err != nil {
		return err
	}
	defer file.Close()

	rec, err := session.Query()
	if err != nil {
		return err
	}

	if rec.Free {
		cmd.Println("FREE")
		return nil
	}

	cmd.Printf("LOCKED ID %s TS %s (%s)\n", rec.Identity, rec.TagHex, timeutil.FormatMicros(rec.Timestamp))
	return nil
}
