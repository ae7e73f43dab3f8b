package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/okian/screening/internal/app"
	"github.com/okian/screening/internal/domain/screening"
	"github.com/spf13/cobra"
)

type calcFlags struct {
	exam   string
	grades []string
}

func newCalcCmd() *cobra.Command {
	f := &calcFlags{}

	cmd := &cobra.Command{
		Use:     "calc",
		Short:   "Calculate a screening score",
		Example: "  screening calc --exam 250 --grades A1,B2,C4,B3,C5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.exam, "exam", "", "JAMB score (0-400)")
	flags.StringSliceVar(&f.grades, "grades", nil, "Five O'Level grades, comma separated")

	return cmd
}

func runCalc(cmd *cobra.Command, f *calcFlags) error {
	svc := app.New()
	res, err := svc.Calculate(cmd.Context(), screening.RawInput{
		ExamScore: f.exam,
		Grades:    f.grades,
	})
	if err != nil {
		return exitError(exitInvalid, "%s", screening.FormatError(err))
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), screening.FormatResult(res))
	return err
}

func newGradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "Print the O'Level grade table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GRADE\tPOINTS")
			for _, e := range screening.Table() {
				fmt.Fprintf(tw, "%s\t%d\n", e.Grade, e.Points)
			}
			return tw.Flush()
		},
	}
}
