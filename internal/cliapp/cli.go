package cliapp

import (
	"flag"
	"fmt"
	"io"

	"depgraph/internal/core/config"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	clear      bool
	watch      bool
	trace      bool
	store      string
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("depgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: depgraph [flags] <root>")
		fmt.Fprintln(fs.Output(), "       depgraph -trace <root> <from> <to>")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.clear, "clear", false, "Remove every node and edge from the store before loading")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-analyze after source changes")
	fs.BoolVar(&opts.trace, "trace", false, "Print the shortest import chain between two files or modules")
	fs.StringVar(&opts.store, "store", "", "Override store.driver (sqlite, cypher, memory, none)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	if opts.version {
		return opts, nil
	}
	if opts.trace {
		if opts.watch {
			fs.Usage()
			return cliOptions{}, fmt.Errorf("-trace and -watch cannot be used together")
		}
		if len(opts.args) != 3 {
			fs.Usage()
			return cliOptions{}, fmt.Errorf("trace mode requires a root and two file or module arguments, got %d arguments", len(opts.args))
		}
		return opts, nil
	}
	if len(opts.args) != 1 {
		fs.Usage()
		return cliOptions{}, fmt.Errorf("expected exactly one root path, got %d arguments", len(opts.args))
	}
	return opts, nil
}

func (o cliOptions) root() string {
	if len(o.args) == 0 {
		return ""
	}
	return o.args[0]
}
