package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jvitoroc/gorules/engine"
	"github.com/jvitoroc/gorules/eval"
	"github.com/jvitoroc/gorules/ruleql"
)

func NewCreateCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME RULE",
		Short: "Parse a rule and store it under NAME, replacing any rule of the same name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, closeStore, err := ra.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			return createRule(cmd.Context(), cmd.OutOrStdout(), e, args[0], args[1])
		},
	}
}

func NewListCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, _, closeStore, err := ra.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			return listRules(cmd.Context(), cmd.OutOrStdout(), e)
		},
	}
}

func NewDeleteCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, closeStore, err := ra.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			return deleteRule(cmd.Context(), cmd.OutOrStdout(), e, args[0])
		},
	}
}

func NewCheckCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "check RULE",
		Short: "Validate a rule against the configured attributes without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ra.loadConfig()
			if err != nil {
				return err
			}

			expr, err := ruleql.Parse(args[0])
			if err != nil {
				return err
			}

			if err := eval.Check(expr, cfg.Catalog()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), expr.String())

			return nil
		},
	}
}

func createRule(ctx context.Context, w io.Writer, e *engine.Engine, name, text string) error {
	if _, err := e.CreateRule(ctx, name, text); err != nil {
		return err
	}

	fmt.Fprintf(w, "Rule '%s' created successfully.\n", name)

	return nil
}

func listRules(ctx context.Context, w io.Writer, e *engine.Engine) error {
	rules, err := e.Rules(ctx)
	if err != nil {
		return err
	}

	if len(rules) == 0 {
		fmt.Fprintln(w, "No rules found.")
	}
	for _, r := range rules {
		fmt.Fprintf(w, "Name: %s, Rule: %s\n", r.Name, r.Text)
	}

	updated, ok, err := e.LastUpdated(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "Last updated: %s (%s)\n", updated.Local().Format(time.DateTime), humanize.Time(updated))
	}

	return nil
}

func deleteRule(ctx context.Context, w io.Writer, e *engine.Engine, name string) error {
	if err := e.DeleteRule(ctx, name); err != nil {
		return err
	}

	fmt.Fprintf(w, "Rule '%s' deleted.\n", name)

	return nil
}
