package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/patterndeck/internal/catalog"
	"github.com/jask/patterndeck/internal/config"
	"github.com/jask/patterndeck/internal/deck"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Import or update patterns from a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		c, err := catalog.Load(args[0])
		if err != nil {
			return err
		}
		n, err := rt.patterns.Import(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d patterns\n", n)
		return nil
	},
}

var responsesAll bool

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "List recorded responses for the current startup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		startupID := ""
		if !responsesAll {
			s, err := rt.identity.CurrentStartup(ctx)
			if err != nil {
				return err
			}
			startupID = s.DocumentID
		}
		recs, err := rt.store.List(ctx, startupID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no responses recorded")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSTARTUP\tPATTERN\tTYPE\tRESPONSE")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.StartupID, r.PatternID, r.ResponseType, r.Response)
		}
		return w.Flush()
	},
}

var startupName string

var useStartupCmd = &cobra.Command{
	Use:   "use-startup [id]",
	Short: "Choose the startup responses are recorded for, or list known ones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 0 {
			return listStartups(cmd, rt)
		}
		s, err := rt.identity.Use(cmd.Context(), args[0], startupName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "responding as %s (%s)\n", s.Name, s.DocumentID)
		return nil
	},
}

func listStartups(cmd *cobra.Command, rt *runtime) error {
	ctx := cmd.Context()
	known, err := rt.identity.Known(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(known) == 0 {
		fmt.Fprintln(out, "no startups registered")
		return nil
	}
	current := ""
	if s, err := rt.identity.CurrentStartup(ctx); err == nil {
		current = s.DocumentID
	} else if !errors.Is(err, deck.ErrNoIdentity) {
		return err
	}
	for _, s := range known {
		mark := " "
		if s.DocumentID == current {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s (%s)\n", mark, s.Name, s.DocumentID)
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a pattern by name, allowing typos",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.patterns.Find(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  [%s]\n", p.Name, p.Category.DisplayName())
		fmt.Fprintf(out, "id: %s\n", p.DocumentID)
		if len(p.Phases) > 0 {
			names := make([]string, 0, len(p.Phases))
			for _, ph := range p.Phases {
				names = append(names, ph.DisplayName())
			}
			fmt.Fprintf(out, "phases: %s\n", strings.Join(names, ", "))
		}
		if p.Description != "" {
			fmt.Fprintf(out, "\n%s\n", p.Description)
		}
		if len(p.RelatedPatterns) > 0 {
			fmt.Fprintln(out, "\nrelated:")
			for _, r := range p.RelatedPatterns {
				fmt.Fprintf(out, "  - %s\n", r.Name)
			}
		}
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all recorded responses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("refusing to delete responses without --yes")
		}
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := rt.maintenance.ResetResponses(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d responses\n", n)
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config written")
		return nil
	},
}

func init() {
	responsesCmd.Flags().BoolVar(&responsesAll, "all", false, "list responses of every startup")
	useStartupCmd.Flags().StringVar(&startupName, "name", "", "display name of the startup")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "confirm deletion")
}
