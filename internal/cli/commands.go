package cli

import (
	"github.com/samvad-hq/langextract-client/internal/app"
	"github.com/spf13/cobra"
)

func newHealthCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				resp, err := r.Health(cmd.Context())
				if err != nil {
					return err
				}
				return opts.printJSON(resp)
			})
		},
	}
}

func newWorkflowCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows",
	}

	var file string
	apply := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Create or update a workflow from a JSON or YAML file",
		Example: `  langextract workflow apply -f invoice-workflow.yaml
  cat wf.json | langextract workflow apply -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := opts.loadBodyFlag(file)
			if err != nil {
				return err
			}
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				resp, err := r.SubmitWorkflow(cmd.Context(), body)
				if err != nil {
					return err
				}
				return opts.printJSON(resp)
			})
		},
	}
	apply.Flags().StringVarP(&file, "file", "f", "", "workflow definition (JSON or YAML, - for stdin)")
	cmd.AddCommand(apply)
	return cmd
}

func newInferSchemaCommand(opts *GlobalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "infer-schema -f FILE",
		Short: "Derive a schema from sample input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := opts.loadBodyFlag(file)
			if err != nil {
				return err
			}
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				resp, err := r.InferSchema(cmd.Context(), body)
				if err != nil {
					return err
				}
				return opts.printJSON(resp)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request body (JSON or YAML, - for stdin)")
	return cmd
}

func newValidateCommand(opts *GlobalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "validate -f FILE",
		Short:   "Evaluate validation rules against data",
		Example: `  langextract validate -f rules.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := opts.loadBodyFlag(file)
			if err != nil {
				return err
			}
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				resp, err := r.Validate(cmd.Context(), body)
				if err != nil {
					return err
				}
				return opts.printJSON(resp)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "body with data and rules (JSON or YAML, - for stdin)")
	return cmd
}

func newJobCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "job ID",
		Short: "Show a job's status and result",
		Long: `Show a job's status and result.

When the job has finished and sinks are configured (LANGEXTRACT_SINKS_FILE),
the result is forwarded to every enabled sink. Jobs in the local ledger are
forwarded once; a failed delivery is retried on the next lookup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				resp, err := r.Job(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return opts.printJSON(resp)
			})
		},
	}
}

func newJobsCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List jobs submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withRunner(cmd.Context(), func(r *app.Runner) error {
				jobs, err := r.Jobs()
				if err != nil {
					return err
				}
				if jobs == nil {
					return opts.printJSON([]any{})
				}
				return opts.printJSON(jobs)
			})
		},
	}
}
