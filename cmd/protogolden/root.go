package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/tmc/protogolden"
	"github.com/tmc/protogolden/internal/jsgen"
)

// builtinFrontend selects the in-process front end with the reference
// JavaScript generator.
const builtinFrontend = "builtin"

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "protogolden",
		Short:         "protogolden - golden-file tests for protoc code generators",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	return root
}

type runOptions struct {
	catalog  string
	frontend string
	pattern  string
	workDir  string
	keep     bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cases of a catalog and compare against golden files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.catalog, "catalog", "c", "protogolden.yaml", "catalog file")
	f.StringVar(&opts.frontend, "frontend", "", `front end command; overrides the catalog ("builtin" for the in-process reference generator)`)
	f.StringVar(&opts.pattern, "run", "", "run only cases whose name matches this regexp")
	f.StringVar(&opts.workDir, "workdir", "", "directory for per-case workspaces (default: system temp dir)")
	f.BoolVar(&opts.keep, "keep", false, "keep workspaces after each case")
	return cmd
}

func newListCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cases of a catalog with their golden files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := protogolden.LoadCatalogFile(catalogPath)
			if err != nil {
				return err
			}
			cmpr := &protogolden.Comparator{Repo: protogolden.DirRepository(c.Fixtures), Layout: c.Layout}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFIXTURE\tIMPORTS\tVARIANT\tGOLDEN")
			for _, tc := range c.Cases {
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n", tc, tc.Fixture, tc.Imports, tc.Variant, cmpr.GoldenPath(tc.Fixture, tc.Variant))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "protogolden.yaml", "catalog file")
	return cmd
}

func runCatalog(stdout, stderr io.Writer, opts runOptions) error {
	c, err := protogolden.LoadCatalogFile(opts.catalog)
	if err != nil {
		return err
	}
	if opts.frontend != "" {
		c.Frontend = opts.frontend
	}
	factory, err := frontendFactory(c.Frontend)
	if err != nil {
		return err
	}
	cases, err := protogolden.Filter(c.Cases, opts.pattern)
	if err != nil {
		return fmt.Errorf("--run: %w", err)
	}

	suite := protogolden.NewSuite(c, factory)
	suite.WorkDir = opts.workDir
	suite.KeepWorkspace = opts.keep
	suite.Logf = glog.V(1).Infof

	p := newPrinter(stdout)
	var errs error
	for _, tc := range cases {
		err := suite.Run(tc)
		p.result(tc, err)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n\n", err)
		}
		errs = multierr.Append(errs, err)
	}

	failed := len(multierr.Errors(errs))
	fmt.Fprintf(stdout, "%d passed, %d failed\n", len(cases)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(cases))
	}
	return nil
}

func frontendFactory(frontend string) (protogolden.FrontendFactory, error) {
	if frontend == "" || frontend == builtinFrontend {
		return protogolden.InProcess(func() protogolden.Generator { return jsgen.New() }), nil
	}
	words, err := protogolden.ParseCommand(frontend)
	if err != nil {
		return nil, err
	}
	return protogolden.Exec(words), nil
}

// ANSI escape codes
const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	f, ok := w.(*os.File)
	return &printer{w: w, color: ok && term.IsTerminal(int(f.Fd()))}
}

func (p *printer) result(tc protogolden.TestCase, err error) {
	status, color := "PASS", colorGreen
	switch {
	case err == nil:
	case protogolden.IsFatal(err):
		status, color = "ERROR", colorRed
	default:
		status, color = "FAIL", colorRed
	}
	var me *protogolden.MismatchError
	detail := ""
	if errors.As(err, &me) {
		detail = " (" + me.Kind.String() + ")"
	}
	if p.color {
		fmt.Fprintf(p.w, "%s%-5s%s %s%s\n", color, status, colorReset, tc, detail)
		return
	}
	fmt.Fprintf(p.w, "%-5s %s%s\n", status, tc, detail)
}
