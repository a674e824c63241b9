package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/faultline/internal/diagnostics"
)

var showOutput string

var dumpsCmd = &cobra.Command{
	Use:   "dumps",
	Short: "List and inspect recorded crash dumps",
}

var dumpsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded crash dumps, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dumps, err := diagnostics.List(cfg.Dumps.Dir)
		if err != nil {
			return err
		}
		if len(dumps) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no crash dumps in %s\n", cfg.Dumps.Dir)
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("ID", "Time", "Message", "Location")
		for _, d := range dumps {
			location := ""
			if d.File != "" {
				location = fmt.Sprintf("%s:%d", d.File, d.Line)
			}
			table.Append(diagnostics.ShortID(d.ID), d.Timestamp.Format("2006-01-02 15:04:05"), d.Message, location)
		}
		return table.Render()
	},
}

var dumpsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one crash dump in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dump, err := diagnostics.Find(cfg.Dumps.Dir, args[0])
		if err != nil {
			return err
		}

		var out []byte
		switch showOutput {
		case "yaml":
			out, err = yaml.Marshal(dump)
		case "json":
			out, err = json.MarshalIndent(dump, "", "  ")
		default:
			return fmt.Errorf("unknown output format %q (want json or yaml)", showOutput)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var dumpsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent crash dump",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dump, err := diagnostics.Latest(cfg.Dumps.Dir)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	dumpsShowCmd.Flags().StringVarP(&showOutput, "output", "o", "json",
		"output format (json, yaml)")

	dumpsCmd.AddCommand(dumpsListCmd)
	dumpsCmd.AddCommand(dumpsShowCmd)
	dumpsCmd.AddCommand(dumpsLatestCmd)
	rootCmd.AddCommand(dumpsCmd)
}
