// Package protogolden is a golden-file regression harness for code
// generators that plug into a protoc-style front end.
//
// Each test case stages fixture sources into a fresh workspace, runs the
// front end once with a single generator registered, and compares the
// generated artifact against a golden file chosen by the case's variant.
//
// Example:
//
//	suite := &protogolden.Suite{
//		Repo:   protogolden.DirRepository("testdata/js"),
//		Layout: protogolden.DefaultLayout,
//		Invoker: &protogolden.Invoker{
//			NewFrontend: protogolden.InProcess(func() protogolden.Generator { return jsgen.New() }),
//		},
//		GeneratorFlag: "js_out",
//	}
//	suite.Test(t, []protogolden.TestCase{
//		{Name: "CommonjsStrict", Fixture: "/test", Imports: []string{"/test_import"}, Variant: "commonjs_strict"},
//	})
//
// Naming:
//
//	fixture   <repo>/test.proto
//	artifact  <workspace>/test_pb.js
//	golden    <repo>/test_pb_commonjs_strict.js
package protogolden
