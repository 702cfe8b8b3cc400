package protogolden

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// Generator produces output files for one input file. The harness treats it
// as a black box.
type Generator interface {
	Generate(req *Request) ([]File, error)
}

// Request is what a front end hands to a generator.
type Request struct {
	// FileToGenerate is the slash-separated name of the input, relative to
	// the search path.
	FileToGenerate string
	// Parameter is the option part of the output flag, passed verbatim.
	Parameter string
	// Sources resolves names relative to the search path, in order.
	Sources fs.FS
}

// File is one generated output, named relative to the output directory.
type File struct {
	Name    string
	Content []byte
}

// Frontend runs a protoc-style command line and returns its exit status.
// args[0] is the program name.
type Frontend interface {
	Run(args []string) int
}

type registration struct {
	flag string
	gen  Generator
	help string
}

// CommandLine is an in-process front end that dispatches inputs to the
// generators registered on it.
type CommandLine struct {
	Stderr io.Writer

	generators []registration
}

// NewCommandLine returns a front end with no generators registered.
func NewCommandLine() *CommandLine {
	return &CommandLine{Stderr: os.Stderr}
}

// RegisterGenerator binds gen to the output flag flagName ("--js_out").
func (c *CommandLine) RegisterGenerator(flagName string, gen Generator, help string) {
	c.generators = append(c.generators, registration{
		flag: strings.TrimLeft(flagName, "-"),
		gen:  gen,
		help: help,
	})
}

// Run implements Frontend. Failures are printed to Stderr and yield status 1.
func (c *CommandLine) Run(args []string) int {
	if err := c.run(args); err != nil {
		fmt.Fprintln(c.stderr(), err)
		return 1
	}
	return 0
}

type outputDirective struct {
	reg       registration
	parameter string
	dir       string
}

func (c *CommandLine) run(args []string) error {
	prog := "protoc"
	if len(args) > 0 {
		prog, args = args[0], args[1:]
	}

	flags := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	flags.SetOutput(c.stderr())
	values := make([]*string, len(c.generators))
	for i, r := range c.generators {
		values[i] = flags.String(r.flag, "", r.help)
	}
	protoPath := flags.StringArrayP("proto_path", "I", nil, "directory in which to search for imports; may be repeated")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var directives []outputDirective
	for i, r := range c.generators {
		if !flags.Changed(r.flag) {
			continue
		}
		param, dir := splitOutputFlag(*values[i])
		if dir == "" {
			return fmt.Errorf("--%s: missing output directory", r.flag)
		}
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return fmt.Errorf("%s: no such file or directory", dir)
		}
		directives = append(directives, outputDirective{reg: r, parameter: param, dir: dir})
	}
	if len(directives) == 0 {
		return errors.New("missing output directives")
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		return errors.New("missing input file")
	}
	dirs := *protoPath
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	sp, err := newSearchPath(dirs)
	if err != nil {
		return err
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		if names[i], err = sp.virtualName(in); err != nil {
			return err
		}
	}

	for _, d := range directives {
		for _, name := range names {
			files, err := d.reg.gen.Generate(&Request{
				FileToGenerate: name,
				Parameter:      d.parameter,
				Sources:        sp,
			})
			if err != nil {
				return fmt.Errorf("--%s: %s: %v", d.reg.flag, name, err)
			}
			for _, f := range files {
				if err := writeOutput(d.dir, f); err != nil {
					return fmt.Errorf("--%s: %v", d.reg.flag, err)
				}
			}
		}
	}
	return nil
}

func (c *CommandLine) stderr() io.Writer {
	if c.Stderr == nil {
		return io.Discard
	}
	return c.Stderr
}

// splitOutputFlag splits "<parameter>:<dir>" at the first colon. A value
// without a colon is just the directory.
func splitOutputFlag(v string) (parameter, dir string) {
	if i := strings.IndexByte(v, ':'); i >= 0 {
		return v[:i], v[i+1:]
	}
	return "", v
}

func writeOutput(dir string, f File) error {
	if !fs.ValidPath(f.Name) {
		return fmt.Errorf("%s: invalid output file name", f.Name)
	}
	dst := filepath.Join(dir, filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, f.Content, 0o644)
}

// searchPath is the ordered list of --proto_path directories. It implements
// fs.FS with first-match-wins lookup.
type searchPath []string

func newSearchPath(dirs []string) (searchPath, error) {
	sp := make(searchPath, len(dirs))
	for i, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		sp[i] = abs
	}
	return sp, nil
}

func (sp searchPath) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	for _, dir := range sp {
		f, err := os.DirFS(dir).Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// virtualName maps an input given on the command line to its name relative
// to the search path.
func (sp searchPath) virtualName(input string) (string, error) {
	if _, err := os.Stat(input); err == nil {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		for _, dir := range sp {
			rel, err := filepath.Rel(dir, abs)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			return filepath.ToSlash(rel), nil
		}
		return "", fmt.Errorf("%s: file does not reside within any path specified using --proto_path (or -I)", input)
	}
	name := filepath.ToSlash(filepath.Clean(input))
	if _, err := fs.Stat(sp, name); err != nil {
		return "", fmt.Errorf("%s: no such file or directory", input)
	}
	return name, nil
}
