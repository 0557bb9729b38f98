package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/snapscroll/snapscroll/internal/cmd"
	"github.com/snapscroll/snapscroll/internal/configpaths"
	logpkg "github.com/snapscroll/snapscroll/internal/log"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("snapscroll"),
		kong.Description("Scroll direction snapping and jitter suppression for relative input devices"),
		kong.UsageOnError(),
		// Config files in priority order; flags and env override them.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, logFile, err := logpkg.Setup(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to set up logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	trace := logpkg.NewTrace(nil)
	if cli.Log.Trace != "" {
		f, err := os.OpenFile(cli.Log.Trace, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open trace file", "file", cli.Log.Trace, "error", err)
		} else {
			defer f.Close()
			trace = logpkg.NewTrace(f)
		}
	} else if cli.Log.Level == "trace" {
		trace = logpkg.NewTrace(os.Stdout)
	}

	ctx.Bind(logger)
	ctx.BindTo(trace, (*logpkg.TraceLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// findUserConfig pre-scans the args for --config so the candidate config
// paths can be built before kong parses anything.
func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("SNAPSCROLL_CONFIG")
}
