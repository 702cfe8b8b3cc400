// protogolden runs golden-file regression cases for a protoc-style code
// generator.
//
// Example:
//
//	protogolden run -c testdata/catalog.yaml
//	protogolden run -c goldens.yaml --frontend "protoc --plugin=protoc-gen-js=./bin/protoc-gen-js" --run Strict
//	protogolden list -c testdata/catalog.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
)

// Version is injected at build time.
var Version = "dev"

func main() {
	// glog registers its flags on the standard flag set; log to stderr
	// unless -log_dir is given.
	flag.Set("logtostderr", "true")

	root := NewRootCmd()
	root.Version = Version
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	err := root.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
