package main

import (
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pontaoski/minic/ast"
	"github.com/pontaoski/minic/codegen"
	"github.com/pontaoski/minic/parser"
	"github.com/ztrue/tracerr"
)

const (
	sourceSuffix    = ".mc"
	interfaceSuffix = ".msig"
)

func sourceFiles(dir string) ([]string, error) {
	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	var files []string
	for _, fi := range fis {
		if !fi.IsDir() && strings.HasSuffix(fi.Name(), sourceSuffix) {
			files = append(files, filepath.Join(dir, fi.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseFile(path string) (*ast.Program, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	defer handle.Close()

	return parser.NewParser(path).Parse(handle)
}

// parseFiles concatenates the top-level declarations of every file into one
// program.
func parseFiles(files []string) (*ast.Program, error) {
	prog := &ast.Program{}
	for _, file := range files {
		p, err := parseFile(file)
		if err != nil {
			return nil, err
		}
		prog.TopLevels = append(prog.TopLevels, p.TopLevels...)
	}
	return prog, nil
}

// loadImports reads signatures from interface files and from compiled
// libraries carrying type info.
func loadImports(paths []string) ([]*codegen.Signature, error) {
	var sigs []*codegen.Signature
	for _, path := range paths {
		if strings.HasSuffix(path, interfaceSuffix) {
			fi, err := os.Open(path)
			if err != nil {
				return nil, tracerr.Wrap(err)
			}
			iface, err := codegen.ReadInterface(fi)
			fi.Close()
			if err != nil {
				return nil, tracerr.Wrap(err)
			}
			sigs = append(sigs, iface.Signatures...)
			continue
		}

		info, err := getTypeInfoFromFile(path)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, info.Interface().Signatures...)
	}
	return sigs, nil
}

type buildOptions struct {
	files    []string
	imports  []string
	library  bool
	failFast bool
}

func compile(doc minicModule, opts buildOptions) (codegen.Result, error) {
	prog, err := parseFiles(opts.files)
	if err != nil {
		return codegen.Result{}, err
	}

	imports, err := loadImports(append(append([]string(nil), doc.Imports...), opts.imports...))
	if err != nil {
		return codegen.Result{}, err
	}

	return codegen.Lower(prog, codegen.Settings{
		PackageName:      doc.Package,
		Version:          doc.Version,
		IsLibrary:        opts.library,
		StopOnFirstError: opts.failFast,
		Imports:          imports,
	})
}

func writeInterface(path string, info codegen.TypeInfo) error {
	fi, err := os.Create(path)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer fi.Close()

	return tracerr.Wrap(codegen.WriteInterface(fi, info.Interface()))
}

// link hands the textual module to clang.
func link(module, out string, library bool, forceImports []string) error {
	cmd := exec.Command("clang", "-nostdlib", "-o", out)

	cmd.Args = append(cmd.Args, forceImports...)

	if library {
		cmd.Args = append(cmd.Args, "-shared", "-no-pie")
	} else {
		cmd.Args = append(cmd.Args, "-Wl,-e,"+codegen.EntryPoint)
	}

	fi, err := ioutil.TempFile("", "*.ll")
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer os.Remove(fi.Name())
	defer fi.Close()

	if _, err := io.Copy(fi, strings.NewReader(module)); err != nil {
		return tracerr.Wrap(err)
	}

	cmd.Args = append(cmd.Args, fi.Name())

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return tracerr.Wrap(cmd.Run())
}
