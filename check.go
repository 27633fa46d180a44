package main

import (
	"context"

	"github.com/pontaoski/minic/codegen"
	"github.com/pontaoski/minic/errors"
	"golang.org/x/sync/errgroup"
)

// checkFiles lowers every file as an independent program. Each goroutine
// owns its own engine; only the result slots are shared.
func checkFiles(ctx context.Context, files []string, imports []*codegen.Signature) (errors.List, error) {
	results := make([]errors.List, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prog, err := parseFile(file)
			if err != nil {
				return err
			}
			_, err = codegen.Codegen(prog, codegen.Settings{IsLibrary: true, Imports: imports})
			results[i] = errors.All(err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all errors.List
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}
