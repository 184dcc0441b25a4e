package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/reading-plan/internal/links"
)

func newLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "links <book> <start> [end]",
		Short: "Print the text and audio links for a chapter range",
		Example: `  readingplan links Genesis 1 3
  readingplan links "1 John" 4`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("start chapter %q is not a number", args[1])
			}
			end := start
			if len(args) == 3 {
				if end, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("end chapter %q is not a number", args[2])
				}
			}

			f := links.New(a.profile.Templates(), a.logger)
			text, err := f.TextCitation(args[0], start, end)
			if err != nil {
				return err
			}
			audio, err := f.AudioCitations(args[0], start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, text)
			for _, line := range audio {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
