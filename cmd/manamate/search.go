package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"manamate/internal/resolver"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <card name>",
		Short: "Resolve one card query and print the reply",
		Long: `Search runs the same lookup as the !carta command and prints the reply.
The reply image is deleted afterwards unless --keep is given.

Examples:
  manamate search raio
  manamate search --keep "lightning bolt"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetBool("keep")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			reply, err := a.resolver.Resolve(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("%s: %w", resolver.KindOf(err), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Text())
			if reply.Image == nil {
				return nil
			}
			if keep {
				color.New(color.FgYellow).Fprintf(out, "📎 %s\n", reply.Image.Path)
				return nil
			}
			return reply.Release()
		},
	}
	cmd.Flags().Bool("keep", false, "keep the reply image in the workspace and print its path")
	return cmd
}
