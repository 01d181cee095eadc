package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/timecode"
)

func newSequencesCommand(ctx *commandContext) *cobra.Command {
	var fps int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sequences <project.prproj>",
		Short: "List the sequences in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if fps == 0 {
				fps = cfg.FPS()
			}
			name, data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			conv, _, err := ctx.converter(ctx.logger(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			seqs, err := conv.Sequences(cmd.Context(), data, fps)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			if asJSON {
				return writeJSON(cmd, seqs)
			}

			body := make([][]string, 0, len(seqs))
			for _, s := range seqs {
				master := ""
				if s.Master {
					master = "*"
				}
				body = append(body, []string{
					master,
					s.Name,
					s.ID,
					itoa(s.VideoTracks),
					itoa(s.AudioTracks),
					itoa(s.Placements),
					itoa(s.NestedRefs),
					timecode.FramesToTimecode(s.DurationFrames, fps),
				})
			}
			headers := []string{"", "Name", "ID", "Video", "Audio", "Clips", "Nested", "Duration"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, body, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 0, "Frame rate for durations (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
