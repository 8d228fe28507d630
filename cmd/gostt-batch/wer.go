package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaz8081/gostt-batch/internal/score"
)

var (
	werReference   string
	werFoldAccents bool
)

var werCmd = &cobra.Command{
	Use:   "wer <transcript>",
	Short: "Compute the word error rate of a transcript against a reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := score.WERFiles(werReference, args[0], score.Options{FoldAccents: werFoldAccents})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(werCmd)
	werCmd.Flags().StringVarP(&werReference, "reference", "r", "", "reference transcript (required)")
	werCmd.Flags().BoolVar(&werFoldAccents, "fold-accents", false, "treat accented and unaccented letters as equal")
	_ = werCmd.MarkFlagRequired("reference")
}
