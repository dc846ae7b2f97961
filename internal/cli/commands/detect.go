package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/detector"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(globals *GlobalOptions) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export-file>",
		Short: "Detect the header format of a chat export",
		Long: `Sample a chat export and report which header family its messages use.

Each non-blank line is classified the way the parser would classify it. For
every header family the report shows how many message lines it matched and how
many it actually read, since the families are tried in order and the first
match wins. A family that matches lines but never reads one is reported as
shadowed.

Families:
  modern     9/10/22, 10:30 AM - Alice: Hello
  legacy     12/01/2020, 14:30 - Alice: Hello
  bracketed  [9/10/22, 10:30:15 AM] Alice: Hello
  regional   01/12/2020 14:30 - Alice: Hello

Optionally generates a starter config file with --write-config.

Example:
  wareader detect chat.txt
  wareader detect --sample 500 --all chat.txt
  wareader detect -w wareader.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, globals, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 200, "Number of non-blank lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every family that matched, not just the best one")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, globals *GlobalOptions, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := commandContext(cmd)

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", exportFile)
	}

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithSystemPhrases(cfg.Phrases()),
	)

	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		t, err := parser.New(parser.WithSystemPhrases(cfg.Phrases())).ParseFile(ctx, exportFile)
		if err != nil {
			return fmt.Errorf("reading participants: %w", err)
		}
		if err := writeStarterConfig(out, result, t.Participants, exportFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, exportFile, opts)
	default:
		return outputDetectText(out, result, exportFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Export Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", exportFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "  Message headers: %d\n", result.MessageLines)
	fmt.Fprintf(w, "  System notices:  %d\n", result.SystemLines)
	fmt.Fprintf(w, "  Other lines:     %d\n", result.OtherLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No export header family detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may not be a chat export, or it may use a format outside")
		fmt.Fprintln(w, "the four supported families. Check the first few lines manually.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected family: %s (%s)\n", best.Pattern.Family, best.Pattern.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d message lines)\n",
		best.Confidence*100, best.WonCount, result.MessageLines)
	fmt.Fprintf(w, "Date order: %s\n", result.DateOrder)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	if result.ShadowNote != "" {
		fmt.Fprintf(w, "WARNING: %s\n", result.ShadowNote)
		fmt.Fprintln(w)
	}
	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other families that matched ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% read, %d line(s) matched)\n",
				i+2, m.Pattern.Family, m.Confidence*100, m.MatchCount)
			fmt.Fprintf(w, "   pattern: '%s'\n", m.Pattern.PatternStr)
			if m.Shadowed() {
				fmt.Fprintf(w, "   shadowed by: %s\n", m.ClaimedBy)
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a family match in JSON output.
type JSONMatch struct {
	Family     string  `json:"family"`
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	WonCount   int     `json:"won_count"`
	SampleLine string  `json:"sample_line"`
	Shadowed   bool    `json:"shadowed,omitempty"`
	ClaimedBy  string  `json:"claimed_by,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	MessageLines  int         `json:"message_lines"`
	SystemLines   int         `json:"system_lines"`
	OtherLines    int         `json:"other_lines"`
	DateOrder     string      `json:"date_order"`
	ShadowNote    string      `json:"shadow_note,omitempty"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:          exportFile,
		SampledLines:  result.SampledLines,
		MessageLines:  result.MessageLines,
		SystemLines:   result.SystemLines,
		OtherLines:    result.OtherLines,
		DateOrder:     string(result.DateOrder),
		ShadowNote:    result.ShadowNote,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		jm := JSONMatch{
			Family:     m.Pattern.Family.String(),
			Name:       m.Pattern.Name,
			Pattern:    m.Pattern.PatternStr,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			WonCount:   m.WonCount,
			SampleLine: m.SampleLine,
			Shadowed:   m.Shadowed(),
		}
		if m.ClaimedBy != parser.FamilyNone {
			jm.ClaimedBy = m.ClaimedBy.String()
		}
		output.Matches = append(output.Matches, jm)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file for the detected export.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, participants []string, exportFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no export header family detected")
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(generateStarterConfig(exportFile, result, participants)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(exportFile string, result *detector.DetectionResult, participants []string) string {
	absExport := exportFile
	if abs, err := filepath.Abs(exportFile); err == nil {
		absExport = abs
	}
	best := result.BestMatch()

	var seen strings.Builder
	for _, name := range participants {
		fmt.Fprintf(&seen, "#   - %s\n", name)
	}
	if len(participants) == 0 {
		seen.WriteString("#   (none)\n")
	}

	self := ""
	if len(participants) > 0 {
		self = participants[0]
	}

	return fmt.Sprintf(`# wareader configuration
# Generated by: wareader detect
# Export: %s
# Detected family: %s (%.0f%% of message lines), date order %s
#
# Participants:
%s#
# Messages from this participant render as outgoing.
# self: %q

output: text

store:
  path: wareader.db

server:
  listen: 127.0.0.1:8080
  max_body_bytes: 33554432

watch:
  every: 30s

# Extra phrases that mark a line as a system notice, matched
# case-insensitively anywhere in the line.
# system_phrases:
#   - "pinned a message"

# Hex colours cycled over participants in first-appearance order.
# palette:
#   - "#25D366"
#   - "#34B7F1"

# webhooks:
#   - name: archive
#     url: https://example.com/hooks/wareader
#     token: ${WAREADER_WEBHOOK_TOKEN}
#     trigger: on_messages
`, absExport, best.Pattern.Family, best.Confidence*100, result.DateOrder, seen.String(), self)
}
