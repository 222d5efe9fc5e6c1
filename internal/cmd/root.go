package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/f4ah6o/ffg-go/internal/config"
	"github.com/f4ah6o/ffg-go/internal/search"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrUsage marks errors caused by a malformed invocation.
var ErrUsage = errors.New("usage error")

// flags holds command-line overrides; zero values mean "not given".
type flags struct {
	configPath  string
	encoding    string
	bufferSize  int
	excludeDirs []string
	color       string
	verbose     bool
}

// NewRootCommand creates and returns the root cobra command for ffg
func NewRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "ffg <directory> <query> <extension>",
		Short: "Find files by name or content",
		Long: `ffg walks <directory> recursively and prints the path of every entry whose
name ends in .<extension> (case-insensitive) and whose file name or text
content contains <query>.

The query is a literal, case-sensitive substring. File names are checked
first; contents are only read when the name does not match. Bytes that are
not valid text in the selected encoding are ignored. Unreadable files are
skipped.

Paths are printed one per line as they are found.

Flags go before <directory>; everything after it is taken literally.

Examples:
  ffg ~/notes well-posedness md
  ffg --exclude-dir .git --exclude-dir node_modules . TODO go
  ffg --encoding shift_jis ./legacy 検索 txt
  ffg . -v md                 # query starting with a dash
  ffg -- -drafts query md     # directory starting with a dash`,
		Version: Version,
		Args:    exactArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, f, args)
		},
		// Usage is printed to stderr by usageError only; stdout carries results alone.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, err.Error())
	})

	fl := cmd.Flags()
	fl.SetInterspersed(false)
	fl.StringVar(&f.configPath, "config", "", "Config file (.toml, .yaml); default searches $"+config.HomeEnv+" or ~/.config/ffg")
	fl.StringVar(&f.encoding, "encoding", "", "Charset of file contents, e.g. utf-8, shift_jis, windows-1252 (default utf-8)")
	fl.IntVar(&f.bufferSize, "buffer-size", 0, "Read chunk size in bytes (default 8192)")
	fl.StringArrayVar(&f.excludeDirs, "exclude-dir", nil, "Directory name to skip; repeatable")
	fl.StringVar(&f.color, "color", "", "Highlight file names: auto, always, never (default auto)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Report skipped entries and a summary on stderr")

	return cmd
}

func exactArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return usageError(cmd, fmt.Sprintf("expected 3 arguments (directory, query, extension), got %d", len(args)))
	}
	for i, name := range []string{"directory", "query", "extension"} {
		if args[i] == "" {
			return usageError(cmd, name+" must not be empty")
		}
	}
	return nil
}

// usageError prints the usage text to stderr and returns an ErrUsage.
func usageError(cmd *cobra.Command, msg string) error {
	cmd.PrintErr(cmd.UsageString())
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}

// resolveConfig loads the config file and applies explicitly set flags on top.
func resolveConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("encoding") {
		cfg.Encoding = f.encoding
	}
	if fl.Changed("buffer-size") {
		cfg.BufferSize = f.bufferSize
	}
	if fl.Changed("exclude-dir") {
		cfg.ExcludeDirs = append(cfg.ExcludeDirs, f.excludeDirs...)
	}
	if fl.Changed("color") {
		cfg.Color = f.color
	}
	if fl.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, f flags, args []string) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	logOut := io.Discard
	if cfg.Verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := log.New(logOut, "", log.LstdFlags)
	if cfg.Source != "" {
		logger.Printf("Using config %s", cfg.Source)
	}

	req := search.Request{
		Root:      args[0],
		Query:     args[1],
		Extension: args[2],
	}
	s, err := search.New(req, search.Options{
		Encoding:    cfg.Encoding,
		BufferSize:  cfg.BufferSize,
		ExcludeDirs: cfg.ExcludeDirs,
		Color:       useColor(cfg.Color, stdout),
		Logger:      logger,
	})
	if err != nil {
		if errors.Is(err, search.ErrInvalidRequest) {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, err = s.Run(ctx, stdout)
	return err
}

// useColor resolves "auto" by checking whether out is a terminal.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
