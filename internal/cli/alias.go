package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/yawn/internal/alias"
)

// AliasAssignment is the alias a fresh compilation context gives a path.
type AliasAssignment struct {
	Path   string `json:"path"`
	Prefix string `json:"prefix"`
	Alias  string `json:"alias"`
}

// NewAliasCommand creates the alias command.
func NewAliasCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias <path>...",
		Short: "Print the aliases a compilation assigns to paths",
		Long: `Print the alias sequence one compilation context assigns to the given
paths, in order. Paths are table names or dotted join paths.

Example:
  yawn alias books author author.address reviews
  # books -> b, author -> a, author.address -> a2, reviews -> r`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlias(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runAlias(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m := alias.NewManager()
	out := make([]AliasAssignment, 0, len(paths))
	for _, p := range paths {
		a, err := m.Register(p)
		if err != nil {
			return outputCommandError(formatter, ErrCodeResolve, fmt.Sprintf("%q: %v", p, err))
		}
		out = append(out, AliasAssignment{Path: p, Prefix: alias.Prefix(p), Alias: a})
		formatter.VerboseLog("%s: prefix %s", p, alias.Prefix(p))
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	for _, a := range out {
		fmt.Fprintf(formatter.Writer, "%s -> %s\n", a.Path, a.Alias)
	}
	return nil
}
