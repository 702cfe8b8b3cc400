package protogolden

import (
	"bytes"
	"io"
)

// Invocation is one front end run: a single output directive, a single
// search path and a single target file.
type Invocation struct {
	GeneratorFlag string // without leading dashes, "js_out"
	Option        string // opaque generator option, "import_style=commonjs"
	SearchPath    string // also the output directory
	Target        string
}

// Args returns the command line for the invocation:
//
//	<program> --<flag>=<option>:<dir> --proto_path=<dir> <target>
func (inv Invocation) Args(program string) []string {
	out := inv.SearchPath
	if inv.Option != "" {
		out = inv.Option + ":" + out
	}
	return []string{
		program,
		"--" + inv.GeneratorFlag + "=" + out,
		"--proto_path=" + inv.SearchPath,
		inv.Target,
	}
}

// FrontendFactory returns a front end with exactly one generator bound to
// generatorFlag. Diagnostics go to stderr.
type FrontendFactory func(generatorFlag string, stderr io.Writer) Frontend

// InProcess returns a factory for in-process front ends. newGenerator is
// called once per invocation so no generator state is shared between runs.
func InProcess(newGenerator func() Generator) FrontendFactory {
	return func(flag string, stderr io.Writer) Frontend {
		cl := NewCommandLine()
		cl.Stderr = stderr
		cl.RegisterGenerator("--"+flag, newGenerator(), "")
		return cl
	}
}

// Exec returns a factory for front ends that run command as a process.
func Exec(command []string) FrontendFactory {
	return func(_ string, stderr io.Writer) Frontend {
		return &ExecFrontend{Command: command, Stderr: stderr}
	}
}

// Invoker runs a front end once per invocation.
type Invoker struct {
	Program     string // args[0]; "protoc" when empty
	NewFrontend FrontendFactory
}

// Args returns the command line Run passes to the front end for inv.
func (iv *Invoker) Args(inv Invocation) []string {
	program := iv.Program
	if program == "" {
		program = "protoc"
	}
	return inv.Args(program)
}

// Run executes inv synchronously and returns the front end exit status.
// A non-zero status is returned together with an *InvocationError.
func (iv *Invoker) Run(inv Invocation) (int, error) {
	args := iv.Args(inv)

	var stderr bytes.Buffer
	status := iv.NewFrontend(inv.GeneratorFlag, &stderr).Run(args)
	if status != 0 {
		return status, &InvocationError{Args: args, Status: status, Output: stderr.String()}
	}
	return 0, nil
}
