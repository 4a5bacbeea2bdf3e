package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fwkit/insta360/fwimage"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <FIRMWARE>",
	Short: "Show the header fields and segment layout of a firmware file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read firmware")
		}
		fw, err := fwimage.Decode(data)
		if err != nil {
			return errors.Wrap(err, "decode firmware")
		}
		for _, w := range fw.Warnings {
			log.Warnf("segment %d (%s): checksum mismatch: declared 0x%08X, computed 0x%08X",
				w.Segment, fw.Segments[w.Segment].Role(), w.Declared, w.Computed)
		}

		fmt.Printf("Product:  %s\n", fw.Product)
		fmt.Printf("Version:  %s\n", fw.Version)
		fmt.Printf("Hardware: %s (rev %d)\n", fw.HwID, fw.HwRev)
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IDX\tROLE\tSIZE\tDATE\tVERSION")
		for _, seg := range fw.Segments {
			fmt.Fprintf(w, "%d\t%s\t%d\t0x%08X\t0x%08X\n",
				seg.Index, seg.Role(), len(seg.Data), seg.Date, seg.Version)
		}
		return w.Flush()
	},
}
