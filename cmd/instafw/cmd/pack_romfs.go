package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(packRomfsCmd)
}

// packRomfsCmd represents the pack-romfs command
var packRomfsCmd = &cobra.Command{
	Use:   "pack-romfs <DIR> <IMAGE>",
	Short: "Build a romfs partition image from a directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fi, err := os.Stat(args[0]); err != nil || !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}
		return newPacker().PackRomfs(cmd.Context(), args[0], args[1])
	},
}
