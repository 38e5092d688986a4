package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/vd09-projects/go-param-elide/internal/candidates"
	"github.com/vd09-projects/go-param-elide/internal/gitutil"
	"github.com/vd09-projects/go-param-elide/internal/log"
	"github.com/vd09-projects/go-param-elide/internal/model"
	"github.com/vd09-projects/go-param-elide/internal/modinfo"
	"github.com/vd09-projects/go-param-elide/internal/pipeline"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
	"github.com/vd09-projects/go-param-elide/internal/stream"
	"github.com/vd09-projects/go-param-elide/internal/utils"
)

func main() {
	var (
		repoRoot  = flag.String("repo", ".", "Path to repo root")
		commitRef = flag.String("commit", "", "Commit hash/ref (metadata only)")

		symbol    = flag.String("symbol", "", `Target function: "F", "pkg.F", "(T).M" or "(*T).M"`)
		file      = flag.String("file", "", "Path suffix of the declaring file, to disambiguate -symbol")
		param     = flag.Int("param", 0, "Zero-based index of the parameter to remove")
		paramName = flag.String("param-name", "", "Name of the parameter to remove (overrides -param)")
		mode      = flag.String("mode", "remove", "Body handling: remove, remove-unused or to-local")
		planPath  = flag.String("plan", "", "JSONL file of targets to apply in order")

		list       = flag.Bool("list", false, "List elision candidates instead of rewriting")
		unusedOnly = flag.Bool("unused-only", false, "With -list, only parameters the body never reads")

		dryRun       = flag.Bool("dry-run", false, "Report matches without writing")
		gofmt        = flag.Bool("gofmt", false, "Format rewritten files")
		keepGoing    = flag.Bool("keep-going", false, "Attempt every edit and every plan entry, reporting all failures")
		writePartial = flag.Bool("write-partial", false, "Write the edits of a failed target")
		tests        = flag.Bool("tests", true, "Include _test.go files")
		crossCheck   = flag.Bool("crosscheck", false, "Compare matched call sites with the static and CHA call graphs")
		force        = flag.Bool("force", false, "Rewrite files with uncommitted changes")

		excludeCSV = flag.String("exclude", "(^|/)(vendor|third_party|testdata|\\.git)/", "Comma-separated regex to exclude paths")
		outPath    = flag.String("out", "", "Path to JSONL output file (optional, defaults to stdout)")
		logPath    = flag.String("log", "", "Log file (defaults to stderr)")
		debug      = flag.Bool("debug", false, "Verbose logging")
	)
	flag.Parse()
	log.Configure(*debug, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mod, err := modinfo.Find(*repoRoot)
	utils.MustNotErr(err)
	log.Infof("module %s (go %s)", mod.Path, mod.GoVersion)
	utils.MustNotErr(mod.CheckToolchain(runtime.Version()))

	reader := scanner.NewGoPackagesReader(mod.Dir, *excludeCSV, *tests, *debug)
	opts := pipeline.Options{
		RepoRoot:     mod.Dir,
		RepoName:     gitutil.InferRepoName(mod.Dir),
		CommitHash:   gitutil.ResolveCommit(mod.Dir, *commitRef),
		Module:       mod,
		DryRun:       *dryRun,
		Gofmt:        *gofmt,
		KeepGoing:    *keepGoing,
		WritePartial: *writePartial,
		CrossCheck:   *crossCheck,
		Force:        *force,
	}

	if *list {
		em := stream.NewJSONLEmitter[model.Candidate](*outPath, model.Candidate.ToJSON, true)
		pl := pipeline.New(reader, nil, opts)
		err := pl.Candidates(ctx, candidates.Options{UnusedOnly: *unusedOnly}, em)
		utils.MustNotErr(closeWith(err, em))
		return
	}

	var targets []model.Target
	switch {
	case *planPath != "":
		targets, err = pipeline.ReadPlan(*planPath)
		utils.MustNotErr(err)
	case *symbol != "":
		targets = []model.Target{{Path: *file, Symbol: *symbol, Param: *param, ParamName: *paramName, Mode: *mode}}
	default:
		fmt.Fprintln(os.Stderr, "paramelide: one of -symbol, -plan or -list is required")
		flag.Usage()
		os.Exit(2)
	}
	for i := range targets {
		targets[i].Mode = utils.If(targets[i].Mode != "", targets[i].Mode).Else(*mode)
	}

	em := stream.NewJSONLEmitter[model.Report](*outPath, model.Report.ToJSON, true)
	pl := pipeline.New(reader, em, opts)
	err = closeWith(pl.Apply(ctx, targets), em)
	if err != nil {
		log.Errorf("paramelide: %v", err)
		os.Exit(1)
	}
}

// closeWith closes c and returns err, or the close error when err is nil.
func closeWith(err error, c io.Closer) error {
	if cerr := c.Close(); err == nil {
		return cerr
	}
	return err
}
