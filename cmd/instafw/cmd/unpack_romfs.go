package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(unpackRomfsCmd)
}

// unpackRomfsCmd represents the unpack-romfs command
var unpackRomfsCmd = &cobra.Command{
	Use:   "unpack-romfs <IMAGE> <DIR>",
	Short: "Extract a romfs partition image into a directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("file %s does not exist", args[0])
		}
		return newPacker().UnpackRomfs(cmd.Context(), args[0], args[1])
	},
}
