package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/ipstrategy/pkg/backend"
	"github.com/pario-ai/ipstrategy/pkg/models"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List accepted business types and their static recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			static := backend.NewStatic()
			for _, bt := range models.BusinessTypes {
				fmt.Fprintln(w, bt)
				for _, r := range static.Recommendations(bt) {
					fmt.Fprintf(w, "  - %s\n", r)
				}
			}
			return nil
		},
	}
}
