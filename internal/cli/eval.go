package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jvitoroc/gorules/config"
)

var ErrInvalidAssignment = errors.New("invalid assignment")

type EvalArgs struct {
	*RootArgs

	Set []string
}

func NewEvalCmd(ra *RootArgs) *cobra.Command {
	ea := &EvalArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "eval NAMES...",
		Short: "Combine the named rules with AND and evaluate them against a record",
		Example: `  gorules eval rule1 rule2 --set age=35 --set department=Sales
  gorules eval rule1,rule2 --set salary=60000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, closeStore, err := ea.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			values, err := parseAssignments(cfg, ea.Set)
			if err != nil {
				return err
			}

			result, err := e.EvaluateRules(cmd.Context(), splitNames(args...), values)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Evaluation result: %t\n", result)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ea.Set, "set", nil, "Record value as attr=value, may be repeated")

	return cmd
}

// splitNames splits comma separated rule names, trimming blanks and dropping
// empty entries.
func splitNames(args ...string) []string {
	var names []string
	for _, arg := range args {
		for name := range strings.SplitSeq(arg, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
	}

	return names
}

func parseAssignments(cfg *config.Config, assignments []string) (map[string]any, error) {
	values := make(map[string]any, len(assignments))

	for _, a := range assignments {
		name, input, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q, want attr=value", ErrInvalidAssignment, a)
		}

		attr, ok := cfg.Attribute(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown attribute %q", ErrInvalidAssignment, name)
		}

		v, ok, err := attr.ParseValue(input)
		if err != nil {
			return nil, err
		}
		if ok {
			values[name] = v
		}
	}

	return values, nil
}
