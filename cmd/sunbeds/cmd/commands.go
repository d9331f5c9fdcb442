package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	// toggleByID makes toggle address the bed by its id instead of its number.
	toggleByID bool

	// addCmd appends free beds.
	addCmd = &cobra.Command{
		Use:   "add [count]",
		Short: "Add free sun beds at the end of the row.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args)
			if err != nil {
				return err
			}

			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.Add(ctx, count)
		},
	}

	// removeCmd drops beds from the end.
	removeCmd = &cobra.Command{
		Use:   "remove [count]",
		Short: "Remove sun beds from the end of the row.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args)
			if err != nil {
				return err
			}

			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.Remove(ctx, count)
		},
	}

	// toggleCmd switches one bed between free and booked.
	toggleCmd = &cobra.Command{
		Use:   "toggle <number>",
		Short: "Book a free sun bed or free a booked one.",
		Long: `Switches one sun bed between free and booked.

The number is the one shown by "sunbeds status", starting at 1.
With --id the number is treated as the bed id instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid sun bed number %q: %w", args[0], err)
			}

			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.Toggle(ctx, number, toggleByID)
		},
	}

	// statusCmd lists every bed.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show every sun bed and how many are free.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.Status(ctx)
		},
	}

	// freeAllCmd frees every bed.
	freeAllCmd = &cobra.Command{
		Use:   "free-all",
		Short: "Mark every sun bed as free.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.FreeAll(ctx)
		},
	}

	// endDayCmd removes every bed.
	endDayCmd = &cobra.Command{
		Use:   "end-day",
		Short: "Remove all sun beds at the end of the day.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.EndDay(ctx)
		},
	}

	// watchCmd reprints the totals whenever the data file changes.
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print the totals every time the data file changes.",
		Long: `Prints how many sun beds are free and reprints it whenever the data file
is changed, for example by "sunbeds toggle" in another terminal. Stops on Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, m, err := newManager(cmd)
			if err != nil {
				return err
			}

			return m.Watch(ctx)
		},
	}
)

// parseCount reads the optional count argument, defaulting to 1.
func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	count, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", args[0], err)
	}

	return count, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	toggleCmd.Flags().BoolVar(&toggleByID, "id", false, "treat the number as a sun bed id")
}
