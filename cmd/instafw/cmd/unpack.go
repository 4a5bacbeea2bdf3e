package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwkit/insta360/packer"
)

var unpackStrict bool

func init() {
	rootCmd.AddCommand(unpackCmd)

	unpackCmd.Flags().BoolVar(&unpackStrict, "strict", false, "fail on segment checksum mismatches")
}

// unpackCmd represents the unpack command
var unpackCmd = &cobra.Command{
	Use:   "unpack <FIRMWARE> <DIR>",
	Short: "Extract a firmware file into segment files plus metadata.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("file %s does not exist", args[0])
		}
		p := newPacker(packer.WithStrictChecksums(unpackStrict))
		return p.Unpack(cmd.Context(), args[0], args[1])
	},
}
