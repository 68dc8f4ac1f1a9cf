package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfup/internal/iri"
)

// IRIResult is the JSON payload of the iri subcommands.
type IRIResult struct {
	Input  string `json:"input"`
	Result string `json:"result"`
}

// NewIRICommand creates the iri command group.
func NewIRICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iri",
		Short: "Resolve, rebase and convert IRIs",
		Long: `Expose the IRI resolver used by LOAD and the request compiler.

Subcommands:
  resolve <ref> <base>             resolve a reference (RFC 3986 section 5.2)
  rebase <url> <old-base> <new>    move a URL from one base to another
  to-path <file-uri>               convert a file URI to a filesystem path
  from-path <path>                 convert an absolute path to a file URI`,
	}

	var flavor string
	cmd.PersistentFlags().StringVar(&flavor, "flavor", "", "path flavor for to-path/from-path (posix|windows, default from config)")

	run := func(fn func(args []string, f iri.PathFlavor) (string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			f := rootOpts.config().Flavor()
			if flavor != "" {
				parsed, err := iri.ParsePathFlavor(flavor)
				if err != nil {
					return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --flavor", err)
				}
				f = parsed
			}
			out, err := fn(args, f)
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeIRI, cmd.Name()+" failed", err)
			}
			if formatter.Format == "json" {
				return formatter.Success(IRIResult{Input: args[0], Result: out})
			}
			fmt.Fprintln(formatter.Writer, out)
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "resolve <ref> <base>",
		Short:         "Resolve a reference against a base",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: run(func(args []string, _ iri.PathFlavor) (string, error) {
			return iri.Resolve(args[0], args[1])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "rebase <url> <old-base> <new-base>",
		Short:         "Move a URL from one base to another",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: run(func(args []string, _ iri.PathFlavor) (string, error) {
			return iri.Rebase(args[0], args[1], args[2])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "to-path <file-uri>",
		Short:         "Convert a file URI to a filesystem path",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: run(func(args []string, f iri.PathFlavor) (string, error) {
			return iri.FileURIToPath(args[0], f)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "from-path <path>",
		Short:         "Convert an absolute path to a file URI",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: run(func(args []string, f iri.PathFlavor) (string, error) {
			return iri.PathToFileURI(args[0], f)
		}),
	})

	return cmd
}
