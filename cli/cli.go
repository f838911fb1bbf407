package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hsmod/cli/cmd"
	"github.com/ardnew/hsmod/lang"
	"github.com/ardnew/hsmod/log"
	"github.com/ardnew/hsmod/pkg"
)

// CLI is the top-level command-line interface for hsmod.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Root   []string `help:"Project root directory or file (repeatable; merged with ${pathEnv})." name:"root"   placeholder:"DIR" short:"r" type:"path"`
	Output string   `default:"text" enum:"${outputEnum}" help:"Output encoding (${enum})."               name:"output" short:"o"`
	Indent int      `default:"2"                         help:"Indent width of output; 0 for compact."`

	Outline cmd.Outline `cmd:"" default:"withargs" help:"List module identifiers with their resolution."`
	Resolve cmd.Resolve `cmd:""                    help:"Find the declaration of a module."`
	Rename  cmd.Rename  `cmd:""                    help:"Rename a module and every reference to it."`
	Check   cmd.Check   `cmd:""                    help:"Report unresolved imports and unparsable files."`
	Find    cmd.Find    `cmd:""                    help:"Fuzzy-search declared modules."`
	Watch   cmd.Watch   `cmd:""                    help:"Re-run check whenever sources change."`
	Parse   cmd.Parse   `cmd:""                    help:"Parse a single file and list its module identifiers."`
	Init    cmd.Init    `cmd:""                    help:"Write a configuration file from the current flags."`
}

// options returns the global options passed to every command.
func (c *CLI) options() (cmd.Options, error) {
	enc, err := lang.ParseEncoding(c.Output)
	if err != nil {
		return cmd.Options{}, err
	}

	return cmd.Options{
		Roots:    searchPath(c.Root, os.Getenv(pkg.PathEnv)),
		Encoding: enc,
		Indent:   max(c.Indent, 0),
		Stdout:   os.Stdout,
	}, nil
}

// Run executes the hsmod CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version,
		"outputEnum":         strings.Join(lang.Encodings(), ","),
		"pathEnv":            pkg.PathEnv,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	opts, err := cli.options()
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, opts)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	log.TraceContext(ctx, "run",
		slog.String("command", ktx.Command()),
		slog.Any("roots", opts.Roots),
		slog.String("output", opts.Encoding.String()),
	)

	return ktx.Run(ctx, &cli)
}
