package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jvitoroc/gorules/config"
	"github.com/jvitoroc/gorules/engine"
)

var ErrNotInteractive = errors.New("not running in an interactive terminal")

const (
	actionCreate = "create"
	actionList   = "list"
	actionEval   = "eval"
	actionDelete = "delete"
	actionExit   = "exit"
)

// isTerminal reports whether stdin can drive the interactive menu.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func NewMenuCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Default command, manage and evaluate rules interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal() {
				return ErrNotInteractive
			}

			e, cfg, closeStore, err := ra.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			m := &menu{engine: e, cfg: cfg, out: cmd.OutOrStdout()}

			return m.run(cmd.Context())
		},
	}
}

type menu struct {
	engine *engine.Engine
	cfg    *config.Config
	out    io.Writer
}

func (m *menu) run(ctx context.Context) error {
	for {
		var action string

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Rule Engine").
					Options(
						huh.NewOption("Create a new rule", actionCreate),
						huh.NewOption("List all rules", actionList),
						huh.NewOption("Evaluate rules", actionEval),
						huh.NewOption("Delete a rule", actionDelete),
						huh.NewOption("Exit", actionExit),
					).
					Value(&action),
			),
		).WithShowHelp(false)

		err := form.RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) || action == actionExit {
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		}
		if err != nil {
			return fmt.Errorf("run menu: %w", err)
		}

		if err := m.do(ctx, action); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			fmt.Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *menu) do(ctx context.Context, action string) error {
	switch action {
	case actionCreate:
		return m.create(ctx)
	case actionList:
		return listRules(ctx, m.out, m.engine)
	case actionEval:
		return m.evaluate(ctx)
	case actionDelete:
		return m.delete(ctx)
	}

	return fmt.Errorf("unknown action %q", action)
}

func (m *menu) create(ctx context.Context) error {
	var name, text string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rule name").Value(&name).Validate(notBlank),
			huh.NewInput().Title("Rule string").Value(&text).Validate(notBlank),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	return createRule(ctx, m.out, m.engine, name, text)
}

func (m *menu) evaluate(ctx context.Context) error {
	var input string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rule names to evaluate").
				Description("Comma separated").
				Value(&input).
				Validate(notBlank),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	names := splitNames(input)
	if len(names) == 0 {
		return engine.ErrNoRules
	}

	expr, err := m.engine.Combine(ctx, names)
	if err != nil {
		return err
	}

	inputs := make([]string, len(m.cfg.Attributes))
	fields := make([]huh.Field, len(m.cfg.Attributes))
	for i, attr := range m.cfg.Attributes {
		fields[i] = huh.NewInput().
			Title(fmt.Sprintf("Value for %s", attr.Name)).
			Description(fmt.Sprintf("%s, leave empty to omit", attr.Type)).
			Value(&inputs[i]).
			Validate(func(s string) error {
				_, _, err := attr.ParseValue(s)
				return err
			})
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx); err != nil {
		return err
	}

	values := make(map[string]any, len(inputs))
	for i, attr := range m.cfg.Attributes {
		v, ok, err := attr.ParseValue(inputs[i])
		if err != nil {
			return err
		}
		if ok {
			values[attr.Name] = v
		}
	}

	result, err := m.engine.Evaluate(expr, values)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Evaluation result: %t\n", result)

	return nil
}

func (m *menu) delete(ctx context.Context) error {
	var name string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rule name to delete").Value(&name).Validate(notBlank),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	return deleteRule(ctx, m.out, m.engine, name)
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}

	return nil
}
