// Command memsim carves RAM into pages, fills every page with a random batch
// of processes and prints the resulting memory layout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"

	"memsim/pkg/config"
	"memsim/pkg/logging"
	"memsim/pkg/memory"
	"memsim/pkg/process"
	"memsim/pkg/ui"
)

type options struct {
	ConfigPath string
	Pages      int
	Seed       uint64
	LogLevel   string
	Quiet      bool
}

func main() {
	opts, err := parseArguments(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if !opts.Quiet {
		showSplashScreen(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}

// parseArguments processes command-line flags
func parseArguments(args []string, errOut io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("memsim", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a JSON config file")
	fs.IntVar(&opts.Pages, "pages", 0, "Number of pages (overrides config)")
	fs.Uint64Var(&opts.Seed, "seed", 0, "Seed for process generation, 0 for random")
	fs.StringVar(&opts.LogLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (overrides config)")
	fs.BoolVar(&opts.Quiet, "quiet", false, "Only print the final summary")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// showSplashScreen prints the banner
func showSplashScreen(w io.Writer) {
	splash := `
╔══════════════════════════════════════════╗
║                                          ║
║   ███╗   ███╗███████╗███╗   ███╗         ║
║   ████╗ ████║██╔════╝████╗ ████║         ║
║   ██╔████╔██║█████╗  ██╔████╔██║         ║
║   ██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║         ║
║   ██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║  sim    ║
║   ╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝         ║
║                                          ║
║        pages, processes and bytes        ║
╚══════════════════════════════════════════╝
`

	style := lipgloss.NewStyle().
		Foreground(ui.PrimaryColor).
		Bold(true)

	fmt.Fprintln(w, style.Render(splash))
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if opts.Pages > 0 {
		cfg.PageCount = opts.Pages
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func initLogging(cfg config.Config, logOut io.Writer) error {
	// A library call may already have brought up the lazy default logger.
	_ = logging.Close()

	if cfg.LogPath != "" {
		return logging.Init(cfg.Logging())
	}
	return logging.InitWithWriter(logOut, cfg.Logging())
}

func run(ctx context.Context, opts options, out, logOut io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := initLogging(cfg, logOut); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Close()

	ram, err := memory.NewRAM(cfg.Geometry())
	if err != nil {
		return err
	}

	pages, err := memory.CarvePages(ram)
	if err != nil {
		return err
	}

	src := process.DefaultSource()
	if cfg.Seed != 0 {
		src = process.NewSeededSource(cfg.Seed)
	}
	spawner := process.NewSpawner(src, process.DefaultWorkers)

	logging.Info("simulation started",
		"ram_size", ram.Size(),
		"pages", len(pages),
		"capacity", cfg.Geometry().Capacity(),
		"seed", cfg.Seed)

	total := 0
	for _, page := range pages {
		n := batchSize(src, cfg)

		procs, err := spawner.Spawn(ctx, n)
		if err != nil {
			return err
		}

		for _, proc := range procs {
			if err := page.Load(proc); err != nil {
				return err
			}
			total++

			if !opts.Quiet {
				fmt.Fprintln(out, ui.RenderProcess(proc))
				fmt.Fprintln(out, ui.RenderStatus(fmt.Sprintf("Processes loaded: %d", total)))
			}
		}

		if !opts.Quiet {
			fmt.Fprintln(out, ui.RenderPage(page, cfg.PageDim))
		}
	}

	fmt.Fprintln(out, ui.RenderSummary(ram, pages))
	logging.Info("simulation finished", "processes", total, "usage", ram.Usage())
	return nil
}

// batchSize returns how many processes go into one page: the configured
// count, or a random number in [1, capacity) so no page starts out full.
func batchSize(src process.Source, cfg config.Config) int {
	if cfg.ProcessesPerPage > 0 {
		return cfg.ProcessesPerPage
	}

	capacity := cfg.Geometry().Capacity()
	if capacity <= 1 {
		return capacity
	}
	return 1 + int(src.Uint64()%uint64(capacity-1))
}
