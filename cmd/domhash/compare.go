package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/use-agent/domhash/domhash"
)

func newCompareCommand() *cobra.Command {
	var showMetric bool
	cmd := &cobra.Command{
		Use:   "compare <digest1> <digest2>",
		Short: "Print the similarity of two digests",
		Long: "Chunk digests score 0-100 by positional overlap. N-gram digests score\n" +
			"0-1 by Jaccard similarity. Digests of different schemes do not compare.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := domhash.CompareStrings(args[0], args[1])
			if err != nil {
				return err
			}
			value := strconv.FormatFloat(score.Value, 'f', -1, 64)
			if showMetric {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", value, score.Metric)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
	cmd.Flags().BoolVarP(&showMetric, "metric", "m", false, "also print the metric name")
	return cmd
}
