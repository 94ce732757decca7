package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/spf13/cobra"
)

var (
	expandFrom          string
	expandTo            string
	expandMax           int
	expandCountWeekdays bool
	expandFromStart     bool
)

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Print the occurrences of an event in a window",
	Long: `Reads an event as JSON, in the format of the calendar API, from the file or from stdin and
prints its occurrences between --from and --to as a JSON array.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}

		var dto calendar.EventDTO
		if err := json.NewDecoder(input).Decode(&dto); err != nil {
			return fmt.Errorf("invalid event: %w", err)
		}
		from, err := time.Parse(time.RFC3339, expandFrom)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, err := time.Parse(time.RFC3339, expandTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		from, to = utils.WallClock(from), utils.WallClock(to)

		template := calendar.Normalize(calendar.DTOToEvent(dto))
		if template.Id == "" {
			template.Id = "event"
		}
		if err := template.Validate(); err != nil {
			return err
		}
		expander := calendar.Expander{
			MaxOccurrences:          expandMax,
			CountWeekdayOccurrences: expandCountWeekdays,
			CountFromSeriesStart:    expandFromStart,
		}
		occurrences, err := expander.ExpandAll([]calendar.Event{template}, from, to)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(calendar.EventsToDTO(occurrences))
	},
}

func init() {
	expandCmd.Flags().StringVar(&expandFrom, "from", "", "Window start (RFC3339)")
	expandCmd.Flags().StringVar(&expandTo, "to", "", "Window end (RFC3339)")
	expandCmd.Flags().IntVar(&expandMax, "max", 0, "Maximum occurrences per event (0 for the default)")
	expandCmd.Flags().BoolVar(&expandCountWeekdays, "count-weekdays", false, "Honour count for weekly rules with explicit days")
	expandCmd.Flags().BoolVar(&expandFromStart, "count-from-start", false, "Number occurrences from the event start instead of the window start")
	_ = expandCmd.MarkFlagRequired("from")
	_ = expandCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(expandCmd)
}
