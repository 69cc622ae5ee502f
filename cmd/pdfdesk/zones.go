package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func zonesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the upload zones",
		Long: `List the upload zones and the service endpoints they post to.

Endpoints are resolved against service.baseURL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ZONE\tENDPOINT\tFIELD\tFILES\tTITLE")
			for _, r := range table.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Endpoint, r.Field, r.Policy, r.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nService: %s\n", cfg.Service.BaseURL)
			return nil
		},
	}
}
