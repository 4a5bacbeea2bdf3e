package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(packCmd)
}

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack <DIR> <FIRMWARE>",
	Short: "Rebuild a firmware file from an unpack directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fi, err := os.Stat(args[0]); err != nil || !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}
		return newPacker().Pack(cmd.Context(), args[0], args[1])
	},
}
