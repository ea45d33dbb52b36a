package cli

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/langextract-client/internal/app"
	"github.com/samvad-hq/langextract-client/pkg/ingest"
	"github.com/spf13/cobra"
)

// ExtractOptions holds options for the extract command.
type ExtractOptions struct {
	*GlobalOptions

	WorkflowID string
	Params     []string
	BodyFile   string
	DocFile    string
	URL        string
	Text       string
}

func newExtractCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ExtractOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Submit text for extraction",
		Long: `Submit text for extraction and print the accepted job.

The text comes from exactly one of --text, --file (plain text, markdown or
HTML), --url (an HTML page) or -f (a raw request body). Query parameters are
sent as given, without URL encoding.`,
		Example: `  langextract extract --workflow wf-1 --file invoice.html
  langextract extract --workflow wf-1 --param lang=en --text "Total due: 10 EUR"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.WorkflowID, "workflow", "", "workflow id (sent as workflow_id)")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "extra query parameter key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.BodyFile, "body", "f", "", "raw request body (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.DocFile, "file", "", "document to ingest")
	cmd.Flags().StringVar(&opts.URL, "url", "", "web page to ingest")
	cmd.Flags().StringVar(&opts.Text, "text", "", "literal text")
	cmd.MarkFlagsMutuallyExclusive("body", "file", "url", "text")
	cmd.MarkFlagsOneRequired("body", "file", "url", "text")
	return cmd
}

func runExtract(cmd *cobra.Command, opts *ExtractOptions) error {
	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}
	if opts.WorkflowID != "" {
		params["workflow_id"] = opts.WorkflowID
	}

	return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
		body, err := opts.body(cmd, r)
		if err != nil {
			return err
		}
		resp, err := r.Extract(cmd.Context(), params, body)
		if err != nil {
			return err
		}
		return opts.printJSON(resp)
	})
}

func (o *ExtractOptions) body(cmd *cobra.Command, r *app.Runner) (any, error) {
	switch {
	case o.BodyFile != "":
		return app.LoadBody(o.BodyFile, o.stdin)
	case o.DocFile != "":
		doc, err := ingest.FromFile(o.DocFile)
		if err != nil {
			return nil, err
		}
		return doc.ExtractBody(), nil
	case o.URL != "":
		doc, err := ingest.FromURL(cmd.Context(), r.HTTP(), o.URL)
		if err != nil {
			return nil, err
		}
		return doc.ExtractBody(), nil
	default:
		return ingest.FromText([]byte(o.Text), "").ExtractBody(), nil
	}
}

func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw)+1)
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", kv)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}
