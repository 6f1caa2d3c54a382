// medigen generates the VContainer registration module for CustomMediator
// handler classes found in a C# source tree.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unitytools/medigen/internal/classify"
	"github.com/unitytools/medigen/internal/discover"
	"github.com/unitytools/medigen/internal/gen"
	"github.com/unitytools/medigen/internal/model"
	"github.com/unitytools/medigen/internal/parse"
	"github.com/unitytools/medigen/internal/resolve"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	watch    bool
	verbose  bool
	jsonLogs bool
}

// run builds and executes the root command. Split from main so tests can
// drive the full CLI with captured output.
func run(args []string, stdout, stderr io.Writer) error {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "medigen <input-dir> <output-dir> <namespace>",
		Short:   "Generate VContainer registrations for CustomMediator handlers",
		Version: version,
		Long: `medigen scans a C# source tree for classes deriving from the
CustomMediator contracts QueryHandler<TQuery, TResult> and
CommandHandler<TCommand>, and generates a single VContainer registration
module wiring every handler with transient lifetime.

Contract membership is resolved through each file's namespace and using
directives, so handlers inheriting a contract through intermediate base
classes are found, and unrelated types sharing a contract's name are not.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return cmd.Help()
			}

			log := newLogger(opts, stderr)
			defer func() { _ = log.Sync() }()

			inputDir, outputDir, namespace := args[0], args[1], args[2]
			if opts.watch {
				return watchAndRegenerate(inputDir, outputDir, namespace, log, stdout)
			}
			_, err := generate(inputDir, outputDir, namespace, log, stdout)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.watch, "watch", false, "regenerate whenever a source file under input-dir changes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug-level logging")
	cmd.Flags().BoolVar(&opts.jsonLogs, "json", false, "JSON log output")

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// generate executes one full batch run: discover, ingest, resolve,
// classify, synthesize, write. It returns the written path.
func generate(inputDir, outputDir, namespace string, log *zap.SugaredLogger, stdout io.Writer) (string, error) {
	root, err := filepath.Abs(inputDir)
	if err != nil {
		return "", errors.Wrap(err, "resolving input directory")
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", errors.Wrap(err, "input directory")
	}
	if !info.IsDir() {
		return "", errors.Newf("%s: not a directory", root)
	}

	paths, err := discover.Files(root)
	if err != nil {
		return "", errors.Wrap(err, "discovering source files")
	}
	log.Debugw("discovered source files", "count", len(paths))

	units := parseUnits(root, paths, log)

	// The environment must be complete before any classification: a base
	// class may be declared in a file ingested after its subclass.
	env := resolve.NewEnvironment(units)

	var regs []model.Registration
	for _, unit := range units {
		for _, class := range unit.Classes {
			c := classify.Classify(env, class)
			if c.Kind == model.NotAHandler {
				continue
			}
			log.Debugw("classified handler",
				"class", class.FullName(), "kind", c.Kind.String(), "file", unit.Path)
			regs = append(regs, model.Registration{
				HandlerName:    class.Name,
				HandlerFull:    class.FullName(),
				Classification: c,
				Unit:           unit,
			})
		}
	}
	if len(regs) == 0 {
		log.Warnw("no handler classes found; writing empty registration module", "input", root)
	}

	text := gen.Render(namespace, regs, gen.CollectUsings(regs))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating output directory")
	}
	outPath := filepath.Join(outputDir, gen.FileName)
	if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "removing previous %s", outPath)
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", outPath)
	}

	log.Infow("generated registration module", "handlers", len(regs), "path", outPath)
	fmt.Fprintln(stdout, outPath)
	return outPath, nil
}

// parseUnits ingests files concurrently, one parser per worker, and
// restores the units to discovery order afterward so downstream ordering
// stays deterministic. Unreadable or unparseable files are skipped with a
// warning; ingestion never fails the run.
func parseUnits(root string, paths []string, log *zap.SugaredLogger) []*model.SourceUnit {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	work := make(chan int, len(paths))
	indexed := make([]*model.SourceUnit, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			parser := parse.NewParser()
			for idx := range work {
				rel := paths[idx]
				source, err := os.ReadFile(filepath.Join(root, rel))
				if err != nil {
					log.Warnw("skipping unreadable file", "path", rel, "error", err)
					continue
				}
				unit, err := parse.Unit(parser, source, rel)
				if err != nil {
					log.Warnw("skipping unparseable file", "path", rel, "error", err)
					continue
				}
				indexed[idx] = unit
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()

	units := make([]*model.SourceUnit, 0, len(paths))
	for _, unit := range indexed {
		if unit != nil {
			units = append(units, unit)
		}
	}
	return units
}

func newLogger(opts *options, w io.Writer) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if opts.verbose {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	if opts.jsonLogs {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)).Sugar()
}
