// Package jsgen is a small JavaScript generator for .proto files. It reads
// only package, import and top-level message declarations, and exists to
// drive the golden harness end to end. Comments are skipped and braces
// inside string literals are ignored; everything else is matched line by
// line, so a declaration must start on its own line.
package jsgen

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/tools/txtar"

	"github.com/tmc/protogolden"
)

//go:embed templates.txtar
var defaultTemplates []byte

// DefaultImportStyle is used when the parameter has no import_style option.
const DefaultImportStyle = "commonjs"

// Generator renders one template per import style.
type Generator struct {
	templates map[string]*template.Template
}

// New returns a generator using the embedded templates.
func New() *Generator {
	g, err := NewFromArchive(defaultTemplates)
	if err != nil {
		panic(err)
	}
	return g
}

// NewFromArchive returns a generator whose templates are the "<style>.tmpl"
// files of a txtar archive.
func NewFromArchive(data []byte) (*Generator, error) {
	archive := txtar.Parse(data)
	g := &Generator{templates: make(map[string]*template.Template)}
	for _, f := range archive.Files {
		style, ok := strings.CutSuffix(f.Name, ".tmpl")
		if !ok {
			continue
		}
		tmpl, err := template.New(style).Parse(string(f.Data))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", f.Name, err)
		}
		g.templates[style] = tmpl
	}
	if len(g.templates) == 0 {
		return nil, fmt.Errorf("no templates in archive")
	}
	return g, nil
}

// Generate implements protogolden.Generator.
func (g *Generator) Generate(req *protogolden.Request) ([]protogolden.File, error) {
	opts, err := parseParameter(req.Parameter)
	if err != nil {
		return nil, err
	}
	tmpl, ok := g.templates[opts.importStyle]
	if !ok {
		return nil, fmt.Errorf("unknown import_style %q", opts.importStyle)
	}

	src, err := fs.ReadFile(req.Sources, req.FileToGenerate)
	if err != nil {
		return nil, err
	}
	f, err := parseFile(req.FileToGenerate, src)
	if err != nil {
		return nil, err
	}
	for _, dep := range f.Imports {
		if _, err := fs.Stat(req.Sources, dep.Path); err != nil {
			return nil, fmt.Errorf("import %q was not found", dep.Path)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, f); err != nil {
		return nil, err
	}
	return []protogolden.File{{
		Name:    strings.TrimSuffix(req.FileToGenerate, ".proto") + "_pb.js",
		Content: buf.Bytes(),
	}}, nil
}

type options struct {
	importStyle string
}

// parseParameter parses "key=value,key=value".
func parseParameter(p string) (options, error) {
	opts := options{importStyle: DefaultImportStyle}
	if p == "" {
		return opts, nil
	}
	for _, kv := range strings.Split(p, ",") {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "import_style":
			opts.importStyle = value
		default:
			return opts, fmt.Errorf("unknown option %q", key)
		}
	}
	return opts, nil
}

// file is the template data for one .proto file.
type file struct {
	Name     string
	Package  string
	Imports  []dependency
	Messages []string
}

type dependency struct {
	Path   string // "test_import.proto"
	Var    string // "test_import_pb"
	Module string // "./test_import_pb.js"
}

var (
	packageRE = regexp.MustCompile(`^package\s+([\w.]+)\s*;`)
	importRE  = regexp.MustCompile(`^import\s+(?:public\s+|weak\s+)?"([^"]+)"\s*;`)
	messageRE = regexp.MustCompile(`^message\s+(\w+)\s*\{`)

	varReplacer = strings.NewReplacer("/", "_", ".", "_", "-", "_")
)

func parseFile(name string, src []byte) (*file, error) {
	src, err := stripComments(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	f := &file{Name: name}
	depth := 0
	sc := bufio.NewScanner(bytes.NewReader(src))
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := strings.TrimSpace(sc.Text())

		if depth == 0 {
			if m := packageRE.FindStringSubmatch(line); m != nil {
				f.Package = m[1]
			} else if m := importRE.FindStringSubmatch(line); m != nil {
				base := strings.TrimSuffix(m[1], ".proto")
				f.Imports = append(f.Imports, dependency{
					Path:   m[1],
					Var:    varReplacer.Replace(base) + "_pb",
					Module: "./" + base + "_pb.js",
				})
			} else if m := messageRE.FindStringSubmatch(line); m != nil {
				f.Messages = append(f.Messages, m[1])
			}
		}

		depth += braceDelta(line)
		if depth < 0 {
			return nil, fmt.Errorf("%s:%d: unbalanced '}'", name, lineNum)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if depth != 0 {
		return nil, fmt.Errorf("%s: unexpected end of file", name)
	}
	if f.Package == "" {
		return nil, fmt.Errorf("%s: missing package declaration", name)
	}
	return f, nil
}

// stripComments removes // and /* */ comments outside string literals.
// Newlines inside block comments are kept so line numbers stay put.
func stripComments(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			out = append(out, c)
			if c == '\\' && i+1 < len(src) {
				i++
				out = append(out, src[i])
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			out = append(out, c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated block comment")
			}
			comment := src[i : i+2+end+2]
			out = append(out, bytes.Repeat([]byte("\n"), bytes.Count(comment, []byte("\n")))...)
			i += len(comment) - 1
		default:
			out = append(out, c)
		}
	}
	return out, nil
}

// braceDelta counts '{' minus '}' outside string literals.
func braceDelta(line string) int {
	delta := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			delta++
		case c == '}':
			delta--
		}
	}
	return delta
}
