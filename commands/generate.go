// Package commands holds the command-line tools registered on the app's root
// command.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mtcreport/services"
	"mtcreport/templates"
)

// generateOptions are the flags of the generate command.
type generateOptions struct {
	Template string
	Payload  string
	Settings string
	Format   string
	Out      string
}

// NewGenerateCommand renders a certificate from a payload file without
// starting the server.
func NewGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a material test certificate from a JSON payload",
		Example: "  mtcreport generate --template M537.xlsx --payload data.json --out report.xlsx\n" +
			"  mtcreport generate --payload data.json --format pdf --settings style.yaml --out report.pdf",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runGenerate(cmd.Context(), opts)
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Template, "template", "", "certificate template workbook (xlsx only; defaults to the settings value)")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "JSON file with the certificate data")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "YAML or JSON style settings file")
	cmd.Flags().StringVar(&opts.Format, "format", "", "output format: xlsx, html or pdf (defaults to the --out extension)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output file")
	cmd.MarkFlagRequired("payload")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions) (string, error) {
	raw, err := os.ReadFile(opts.Payload)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	var payload services.MTCPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("parse payload %s: %w", opts.Payload, err)
	}
	if err := payload.Validate(); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	settings := services.DefaultSettings()
	if opts.Settings != "" {
		if settings, err = services.LoadSettingsFile(opts.Settings); err != nil {
			return "", err
		}
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(opts.Out), "."))
	}

	var out []byte
	switch format {
	case "xlsx":
		tmpl := opts.Template
		if tmpl == "" {
			tmpl = settings.TemplatePath
		}
		out, err = services.GenerateMTCExcel(tmpl, payload, settings)
	case "html", "htm":
		var buf bytes.Buffer
		err = templates.MTCReport(services.BuildReportView(payload, settings)).Render(ctx, &buf)
		out = buf.Bytes()
	case "pdf":
		out, err = services.GenerateMTCPDF(payload, settings)
	default:
		return "", fmt.Errorf("unknown format %q (want xlsx, html or pdf)", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(opts.Out, out, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", opts.Out, err)
	}
	return opts.Out, nil
}
