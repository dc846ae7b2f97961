package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/detector"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(globals *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [export-file|glob|dir]...",
		Short: "Diagnose configuration, store and export issues",
		Long: `Diagnose common setup problems.

Checks:
- Config file existence and syntax (when --config is given)
- Transcript store accessibility
- Export file existence and header family
- Webhook configuration (and connectivity with -v)

Example:
  wareader diagnose
  wareader --config wareader.yaml diagnose chat.txt
  wareader diagnose -v exports/  # verbose output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd), cmd.OutOrStdout(), globals, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, globals *GlobalOptions, inputs []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	if globals.ConfigPath != "" {
		result := checkConfigExists(globals.ConfigPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, globals)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check the transcript store
	results = append(results, checkStore(ctx, globals, cfg))

	// 4. Check export files and their header family
	if len(inputs) > 0 {
		results = append(results, checkExports(ctx, cfg, inputs, opts)...)
	}

	// 5. Check webhooks configuration
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'wareader detect <export-file> --write-config wareader.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "Config file is empty, defaults apply"
		result.Suggests = []string{
			"Use 'wareader detect <export-file> --write-config wareader.yaml' to generate a starter config",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	return result
}

func checkConfigParseable(ctx context.Context, globals *GlobalOptions) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if globals.ConfigPath == "" {
		result.Message = "No config file given, using defaults"
	} else {
		result.Message = "Config file parsed successfully"
	}
	result.Details = []string{
		fmt.Sprintf("Output: %s", cfg.Output),
		fmt.Sprintf("Custom system phrases: %d", len(cfg.SystemPhrases)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkStore(ctx context.Context, globals *GlobalOptions, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Store: %s", cfg.Store.Path),
	}

	if _, err := os.Stat(cfg.Store.Path); os.IsNotExist(err) {
		result.Status = "warning"
		result.Message = "Database does not exist yet"
		result.Suggests = []string{
			"Run 'wareader import <export-file>' to create it",
		}
		return result
	}

	st, err := globals.OpenStore(cfg)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot open database: %v", err)
		result.Suggests = []string{
			"Check file permissions",
			"Move the file aside if it is not a wareader database",
		}
		return result
	}
	defer func() { _ = st.Close() }()

	if err := st.Ping(ctx); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Database not responding: %v", err)
		return result
	}

	summaries, err := st.List(ctx)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot list transcripts: %v", err)
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d transcript(s) stored", len(summaries))
	for _, s := range summaries {
		result.Details = append(result.Details, fmt.Sprintf("%s %s", s.ID, s.Source))
	}
	return result
}

func checkExports(ctx context.Context, cfg *config.Config, inputs []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	files, err := parser.ExpandExports(inputs)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Export Files",
			Status:  "error",
			Message: err.Error(),
		})
	}

	d := detector.New(detector.WithSystemPhrases(cfg.Phrases()))
	readable := 0

	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Export: %s", file),
		}

		info, err := os.Stat(file)
		switch {
		case os.IsNotExist(err):
			result.Status = "error"
			result.Message = "File does not exist"
			result.Suggests = []string{"Check if the export path is correct"}
		case err != nil:
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot access file: %v", err)
			result.Suggests = []string{"Check file permissions"}
		case info.Size() == 0:
			result.Status = "warning"
			result.Message = "File is empty (0 bytes)"
		default:
			readable++
			result = checkExportFamily(ctx, d, file, info.Size(), opts)
		}

		results = append(results, result)
	}

	if readable == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Export Files Summary",
			Status:  "error",
			Message: "No readable export files found",
			Suggests: []string{
				"Ensure at least one export file exists and is readable",
			},
		})
	}

	return results
}

func checkExportFamily(ctx context.Context, d *detector.Detector, file string, size int64, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Export: %s", file),
	}

	if !parser.IsExportFile(file) {
		result.Suggests = append(result.Suggests, "Chat exports are usually .txt files")
	}

	det, err := d.DetectFromFile(ctx, file)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return result
	}

	if !det.HasMatch() {
		result.Status = "error"
		result.Message = fmt.Sprintf("No message headers in %d sampled line(s)", det.SampledLines)
		result.Suggests = append(result.Suggests,
			"The file may not be a chat export",
			"Use 'wareader detect "+file+"' for details",
		)
		return result
	}

	best := det.BestMatch()
	result.Status = "ok"
	result.Message = fmt.Sprintf("%s family, %.0f%% of %d message line(s) (%s)",
		best.Pattern.Family, best.Confidence*100, det.MessageLines, humanize.Bytes(uint64(size)))

	if det.ShadowNote != "" {
		result.Status = "warning"
		result.Details = append(result.Details, det.ShadowNote)
	}
	if det.AmbiguityNote != "" {
		result.Details = append(result.Details, det.AmbiguityNote)
	}
	if opts.Verbose {
		result.Details = append(result.Details,
			"Sample match:",
			truncate(best.SampleLine, 80),
			fmt.Sprintf("Date order: %s", det.DateOrder),
		)
	}
	if len(result.Suggests) > 0 && result.Status == "ok" {
		result.Status = "warning"
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== wareader Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before parsing.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nEverything looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}

		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnMessages, config.WebhookTriggerAlways, config.WebhookTriggerNever:
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_messages, always, or never)", wh.Trigger))
			}
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to see whether the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (deliveries can still succeed)",
			"Check authentication if using a token",
		}
	}

	return result
}

// truncate shortens s to maxLen terminal cells.
func truncate(s string, maxLen int) string {
	return ansi.Truncate(s, maxLen, "...")
}
