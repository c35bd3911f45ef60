package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/buildinfo"
	"github.com/matzehuels/depman/pkg/conflict"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/health"
	"github.com/matzehuels/depman/pkg/httputil"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/github"
	"github.com/matzehuels/depman/pkg/integrations/pypi"
	"github.com/matzehuels/depman/pkg/observability"
)

// appName is used for directories and display.
const appName = "depman"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer // command output
	err io.Writer // logs, spinners, prompts
	in  io.Reader // prompt input

	configFile string
	verbose    bool
	cfg        *Config
	// interactive enables the spinner and the confirmation prompt.
	interactive bool
}

// New creates a CLI writing results to out and diagnostics to errOut.
func New(out, errOut io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(errOut, level),
		out:         out,
		err:         errOut,
		in:          os.Stdin,
		interactive: isTerminal(errOut),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depman checks the health and compatibility of Python dependencies",
		Long: `depman inspects requirements.txt and pyproject.toml manifests, grades how
actively each package is maintained using PyPI and GitHub, and refuses to add
a package whose declared dependencies conflict with what is already pinned.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := loadConfig(c.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			c.cfg = cfg
			observability.SetHTTPHooks(httpLogHooks{logger: c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.SetErr(c.err)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.configFile, "config", "", "config file (default ./depman.yaml)")
	flags.Bool("no-cache", false, "bypass the HTTP response cache")
	flags.StringP("file", "f", defaultManifest, "manifest file")

	root.AddCommand(c.healthCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.auditCommand())
	root.AddCommand(c.outdatedCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Services
// =============================================================================

// services bundles the clients a command needs, built from the loaded config.
type services struct {
	cache  *httputil.Cache // nil with --no-cache
	pypi   *pypi.Client
	github *github.Client
}

func (c *CLI) newServices() (*services, error) {
	s := &services{}
	if !c.cfg.NoCache {
		cache, err := integrations.NewCache(c.cfg.CacheDir, c.cfg.CacheTTL)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "err", err)
		} else {
			s.cache = cache
		}
	}

	ua := buildinfo.UserAgent()
	s.pypi = pypi.NewClient(s.cache, c.cfg.PyPIURL, ua)

	gh, err := github.NewClient(s.cache, c.cfg.GitHubToken, c.cfg.GitHubURL, ua)
	if err != nil {
		return nil, err
	}
	s.github = gh
	if c.cfg.GitHubToken == "" {
		c.Logger.Debug("no GitHub token set, using anonymous rate limits")
	}
	return s, nil
}

func (c *CLI) newChecker(s *services) *health.Checker {
	return &health.Checker{PyPI: s.pypi, GitHub: s.github, Logger: c.Logger}
}

func (c *CLI) newDetector() conflict.Detector {
	return conflict.Detector{Logger: c.Logger}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// Exit statuses returned by [ExitCode].
const (
	ExitError       = 1
	ExitConflict    = 2
	ExitInterrupted = 130
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errs.Is(err, errs.ErrCodeConflict):
		return ExitConflict
	}
	return ExitError
}

// PrintError writes err to w the way commands print failures.
func PrintError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		printWarning(w, "Interrupted")
		return
	}
	printError(w, "%s", errs.UserMessage(err))
}
