package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/output"
	"github.com/ccollicutt/wareader/pkg/parser"
	"github.com/ccollicutt/wareader/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output  string
	Self    string
	Verbose bool
	Quiet   bool
	Jobs    int
	Render  bool
	Width   int

	// Webhook options
	WebhookURL         string
	WebhookToken       string
	WebhookTrigger     string
	WebhookSummaryOnly bool
}

// NewParseCommand creates the parse command.
func NewParseCommand(globals *GlobalOptions) *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file|glob|dir>...",
		Short: "Parse chat exports into a transcript report",
		Long: `Parse one or more chat export files and print a transcript report.

Arguments may be files, glob patterns or directories; a directory contributes
the .txt exports directly inside it. Files are parsed concurrently and reported
in sorted path order.

Exit codes:
  0 - At least one message found
  1 - No user messages in any input
  2 - Configuration or runtime error`,
		Example: `  wareader parse chat.txt
  wareader parse --self Alice -o markdown --render chat.txt
  wareader parse -q -o json exports/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, globals, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json|markdown), defaults to the config output")
	cmd.Flags().StringVar(&opts.Self, "self", "", "Participant whose messages are outgoing (overrides config self)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Add participant statistics and parse metadata")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no transcript")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Files parsed concurrently")
	cmd.Flags().BoolVar(&opts.Render, "render", false, "Render markdown output for the terminal")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "Wrap width for rendered markdown (default 80)")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnMessages), "When to fire webhook (on_messages|always|never)")
	cmd.Flags().BoolVar(&opts.WebhookSummaryOnly, "webhook-summary-only", false, "Send statistics without the records")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, globals *GlobalOptions, opts *ParseOptions) error {
	ctx := commandContext(cmd)
	ExitCode = 0

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		opts.Output = cfg.Output
	}
	self := opts.Self
	if self == "" {
		self = cfg.Self
	}

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	trigger, err := parseTrigger(opts.WebhookTrigger)
	if err != nil {
		return err
	}

	files, err := parser.ExpandExports(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no export files matched: %v", args)
	}

	p := parser.New(parser.WithSystemPhrases(cfg.Phrases()))
	parsed, err := parseAll(ctx, p, files, opts.Jobs)
	if err != nil {
		return err
	}

	reports := make([]*output.Report, 0, len(parsed))
	for _, pe := range parsed {
		if self != "" && !slices.Contains(pe.transcript.Participants, self) {
			slog.Warn("Perspective matches no participant", "self", self, "file", pe.transcript.Source)
		}
		report, err := output.NewReport(ctx, pe.transcript, output.ReportOptions{
			Self:       self,
			Colors:     cfg.Colors(),
			ConfigFile: globals.ConfigPath,
			Duration:   pe.elapsed,
		})
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 1 {
		err = formatter.Format(ctx, reports[0], out)
	} else {
		err = formatter.FormatAll(ctx, reports, out)
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail the parse)
	webhooks := collectWebhooks(cfg, opts, trigger)
	for _, report := range reports {
		sendWebhooks(ctx, cmd.ErrOrStderr(), webhooks, opts.WebhookSummaryOnly, report)
	}

	if !slices.ContainsFunc(reports, (*output.Report).HasMessages) {
		ExitCode = 1
	}

	return nil
}

// parsedExport is one parsed input with its parse time.
type parsedExport struct {
	transcript *parser.Transcript
	elapsed    time.Duration
}

// parseAll parses files with at most jobs running at once. Results keep the
// order of files. The first failure cancels the remaining parses.
func parseAll(ctx context.Context, p *parser.Parser, files []string, jobs int) ([]parsedExport, error) {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]parsedExport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			t, err := p.ParseFile(gctx, file)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			results[i] = parsedExport{transcript: t, elapsed: time.Since(start)}
			slog.Debug("Parsed export",
				"file", file,
				"messages", t.UserMessages(),
				"notices", t.SystemNotices(),
				"lines", t.Stats.Lines,
				"duration", results[i].elapsed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func createFormatter(opts *ParseOptions) (output.Formatter, error) {
	return output.New(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Render:  opts.Render,
		Width:   opts.Width,
	})
}

func parseTrigger(s string) (config.WebhookTrigger, error) {
	switch t := config.WebhookTrigger(s); t {
	case "":
		return config.WebhookTriggerOnMessages, nil
	case config.WebhookTriggerOnMessages, config.WebhookTriggerAlways, config.WebhookTriggerNever:
		return t, nil
	default:
		return "", fmt.Errorf("invalid webhook-trigger %q (use on_messages, always, or never)", s)
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ParseOptions, trigger config.WebhookTrigger) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// sendWebhooks sends the report to every webhook whose trigger fires.
// Results are reported on w; failures never fail the command.
func sendWebhooks(ctx context.Context, w io.Writer, webhooks []config.WebhookConfig, summaryOnly bool, report *output.Report) {
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !webhook.ShouldFire(wh.Trigger, report) {
			slog.Debug("Webhook skipped", "webhook", wh.Name, "trigger", wh.Trigger, "source", report.Source)
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:         wh.URL,
			Token:       wh.Token,
			Timeout:     wh.Timeout,
			SummaryOnly: summaryOnly,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", name, webhookError(resp))
		}
	}
}

func webhookError(resp *webhook.Response) error {
	if resp.Error != nil {
		return resp.Error
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}
