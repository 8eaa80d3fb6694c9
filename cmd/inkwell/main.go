// Package main provides the inkwell command line client. It keeps a browser
// session for the reading platform on disk and prints the account's stories,
// lists and feeds as JSON or styled text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/inkwell/pkg/config"
	"github.com/entrhq/inkwell/pkg/logging"
	"github.com/entrhq/inkwell/pkg/medium"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	SessionPath string
	Headless    string
	Output      string
	Verbosity   string
	Timeout     time.Duration
	ShowVersion bool

	Command string
	Args    []string
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("inkwell v%s\n", version)
		return
	}
	if cli.Command == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("inkwell %s failed: %v", cli.Command, err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cli.SessionPath, "session", "", "Path to the stored session (overrides config)")
	flag.StringVar(&cli.Headless, "headless", "", "Force browser mode: true or false (default: decided by session state)")
	flag.StringVar(&cli.Output, "output", "text", "Output format: text or json")
	flag.StringVar(&cli.Verbosity, "verbosity", "", "Log verbosity: quiet, normal, verbose, debug (overrides config)")
	flag.DurationVar(&cli.Timeout, "timeout", 10*time.Minute, "Overall timeout for the command")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "inkwell - session-keeping client for your reading account\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  login                 Sign in (opens a browser window when needed)\n")
		fmt.Fprintf(os.Stderr, "  articles              List your stories across all status tabs\n")
		fmt.Fprintf(os.Stderr, "  content <url>         Fetch the full text of a story\n")
		fmt.Fprintf(os.Stderr, "  search <query>        Search stories\n")
		fmt.Fprintf(os.Stderr, "  lists                 List your reading lists\n")
		fmt.Fprintf(os.Stderr, "  list <id>             List the stories in a reading list\n")
		fmt.Fprintf(os.Stderr, "  feed [home|following|tag:<name>]...  Read and merge feeds\n")
		fmt.Fprintf(os.Stderr, "  publish <draft-id>    Publish a draft\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwell login\n")
		fmt.Fprintf(os.Stderr, "  inkwell -output json articles\n")
		fmt.Fprintf(os.Stderr, "  inkwell feed home tag:golang\n\n")
	}

	flag.Parse()
	if flag.NArg() > 0 {
		cli.Command = strings.ToLower(flag.Arg(0))
		cli.Args = flag.Args()[1:]
	}
	return cli
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cli.SessionPath != "" {
		cfg.Session.Path = cli.SessionPath
	}
	if cli.Verbosity != "" {
		cfg.Logging.Verbosity = cli.Verbosity
	}
	if cli.Headless != "" {
		v, err := strconv.ParseBool(cli.Headless)
		if err != nil {
			return nil, fmt.Errorf("invalid -headless value %q", cli.Headless)
		}
		cfg.Browser.Headless = &v
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Verbosity)
	if cfg.Logging.Stderr {
		return logging.NewWithWriter("inkwell", level, os.Stderr), nil
	}
	return logging.NewLogger("inkwell", level)
}

func run(ctx context.Context, cli *CLIConfig) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out, err := newRenderer(cli.Output, os.Stdout)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	client, err := medium.New(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warnf("Failed to close browser: %v", closeErr)
		}
	}()

	if _, err := client.Initialize(ctx, medium.InitOptions{}); err != nil {
		return err
	}

	err = dispatch(ctx, client, cli, out)
	if errors.Is(err, medium.ErrLoginFailed) {
		return fmt.Errorf("%w (see %s for details)", err, logger.LogPath())
	}
	return err
}

func dispatch(ctx context.Context, client *medium.Client, cli *CLIConfig, out *renderer) error {
	arg := func(name string) (string, error) {
		if len(cli.Args) == 0 {
			return "", fmt.Errorf("%s requires a %s argument", cli.Command, name)
		}
		return strings.Join(cli.Args, " "), nil
	}

	switch cli.Command {
	case "login":
		status, err := client.EnsureLoggedIn(ctx)
		if err != nil {
			return err
		}
		return out.status(status)

	case "articles":
		articles, err := client.ListArticles(ctx)
		if err != nil {
			return err
		}
		return out.articles(articles)

	case "content":
		u, err := arg("url")
		if err != nil {
			return err
		}
		content, err := client.GetArticleContent(ctx, u)
		if err != nil {
			return err
		}
		return out.content(content)

	case "search":
		q, err := arg("query")
		if err != nil {
			return err
		}
		cards, err := client.Search(ctx, q)
		if err != nil {
			return err
		}
		return out.cards(cards)

	case "lists":
		lists, err := client.ListReadingLists(ctx)
		if err != nil {
			return err
		}
		return out.readingLists(lists)

	case "list":
		id, err := arg("list id")
		if err != nil {
			return err
		}
		cards, err := client.ListReadingListArticles(ctx, id)
		if err != nil {
			return err
		}
		return out.cards(cards)

	case "feed":
		names := cli.Args
		if len(names) == 0 {
			names = []string{string(medium.FeedHome)}
		}
		specs := make([]medium.FeedSpec, 0, len(names))
		for _, n := range names {
			spec, err := medium.ParseFeedSpec(n)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}
		if len(specs) == 1 {
			cards, err := client.GetFeed(ctx, specs[0])
			if err != nil {
				return err
			}
			return out.cards(cards)
		}
		merged, err := client.GetFeeds(ctx, specs...)
		if err != nil {
			return err
		}
		return out.cards(merged)

	case "publish":
		id, err := arg("draft id")
		if err != nil {
			return err
		}
		u, err := client.PublishDraft(ctx, id)
		if err != nil {
			return err
		}
		return out.published(u)
	}
	return fmt.Errorf("unknown command %q (run inkwell -h for usage)", cli.Command)
}
