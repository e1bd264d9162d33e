package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Produce a structured analysis of a contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		res, err := a.Analyzer.Analyze(cmd.Context(), text)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask FILE QUESTION",
	Short: "Answer a question about a contract",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		ans, err := a.Analyzer.Ask(cmd.Context(), text, args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), ans)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, askCmd)
}
