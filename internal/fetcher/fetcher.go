package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/salvage-search/salvage-tools/internal/catalog"
	"github.com/salvage-search/salvage-tools/internal/logging"
	"github.com/salvage-search/salvage-tools/internal/registry"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Options controls a fetch run.
type Options struct {
	// StartAt skips makes whose name sorts before it. Empty fetches all.
	StartAt string
	Logger  *slog.Logger
}

// Output is where RunAndPersist writes the catalog.
type Output struct {
	Path string
	Mode catalog.WriteMode
}

// Result describes a fetch run. A run that stopped early still carries the
// makes gathered before the failure.
type Result struct {
	Catalog catalog.Catalog
	// Attempted counts makes for which a request was issued.
	Attempted int
	// Skipped lists makes whose search returned no models.
	Skipped []string
	// FailedMake is the make being processed when the run stopped.
	FailedMake string
	Err        error
}

// Complete reports whether every selected make was fetched.
func (r *Result) Complete() bool {
	return r.Err == nil
}

// Run fetches models for every selected make in registry order.
func Run(ctx context.Context, src ModelSource, reg *registry.Registry, opts Options) *Result {
	res := &Result{Catalog: catalog.Catalog{}}
	run(ctx, src, reg, opts, res)
	return res
}

// RunAndPersist runs the fetch loop and then writes the catalog to out,
// whether the loop finished, failed or was cancelled. The returned error
// reports only the write; fetch failures are in Result.Err.
func RunAndPersist(ctx context.Context, src ModelSource, reg *registry.Registry, opts Options, out Output) (res *Result, err error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	res = &Result{Catalog: catalog.Catalog{}}
	defer func() {
		log.Info(printer.Sprintf("Writing out %d records", len(res.Catalog)), "path", out.Path, "mode", out.Mode)
		if werr := catalog.Write(out.Path, res.Catalog, out.Mode); werr != nil {
			err = fmt.Errorf("writing catalog: %w", werr)
		}
	}()

	run(ctx, src, reg, opts, res)
	return res, nil
}

func run(ctx context.Context, src ModelSource, reg *registry.Registry, opts Options, res *Result) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	for _, name := range reg.NamesFrom(opts.StartAt) {
		if err := ctx.Err(); err != nil {
			res.FailedMake = name
			res.Err = err
			return
		}

		id, _ := reg.Lookup(name)
		log.Info("fetching models", "make", name, "id", id.String())
		res.Attempted++

		records, err := src.FetchModels(ctx, id)
		if err != nil {
			res.FailedMake = name
			res.Err = fmt.Errorf("fetching models for %s: %w", name, err)
			return
		}
		log.Info(printer.Sprintf("received %d models", len(records)), "make", name)

		if len(records) == 0 {
			res.Skipped = append(res.Skipped, name)
			continue
		}

		models := BuildModels(records)
		res.Catalog[name] = catalog.Make{ID: id, Models: models}
		log.Info("sample model", "make", name, "key", sampleKey(models))
	}
}

// sampleKey returns a random key for spot-checking. Diagnostic only.
func sampleKey(models map[string]catalog.Model) string {
	if len(models) == 0 {
		return ""
	}
	keys := make([]string, 0, len(models))
	for k := range models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[rand.Intn(len(keys))]
}
