package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

func newGenerateCmd(configPath *string) *cobra.Command {
	var (
		name        string
		typ         string
		description string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an IP strategy for a business profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			bt, err := models.ParseBusinessType(typ)
			if err != nil {
				return err
			}
			profile := models.BusinessProfile{Name: name, Type: bt, Description: description}
			if err := profile.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			res, err := a.gateway.Generate(ctx, profile)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Strategy.Text)
				return err
			}
			path, err := outputPath(out, profile.Name)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(res.Strategy.Text+"\n"), 0o644); err != nil {
				return fmt.Errorf("write strategy: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Strategy written to %s (cached: %t)\n", path, res.Cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "business name")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "business type (see `ipstrategy types`)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "short business description")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// outputPath resolves --out: an existing directory receives the default
// strategy file name, anything else is used as the file path.
func outputPath(out, businessName string) (string, error) {
	info, err := os.Stat(out)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(out, models.StrategyFileName(businessName)), nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return out, nil
	default:
		return "", fmt.Errorf("stat %s: %w", out, err)
	}
}
