package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/listing"
	"github.com/celestiaorg/jobdesk/internal/query"
	"github.com/celestiaorg/jobdesk/internal/workflow"
)

func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and apply to job postings",
	}
	jobsCmd.AddCommand(newListJobsCmd())
	jobsCmd.AddCommand(newApplyCmd())
	return jobsCmd
}

func newListJobsCmd() *cobra.Command {
	var (
		criteria query.JobCriteria
		pageNum  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List job postings",
		Long: `List job postings. Every filter given must match: keyword against the title,
location and company against their fields, all case-insensitive substrings.
Signs in first unless --guest is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lt, err := startLifetime()
			if err != nil {
				return err
			}
			if _, _, err := lt.signIn(cmd.Context()); err != nil {
				return err
			}

			ctrl := listing.NewController(lt.client)
			if err := ctrl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("error fetching jobs: %w", err)
			}

			engine := ctrl.Engine()
			engine.SetCriteria(criteria)
			if err := selectPage(engine, pageNum); err != nil {
				return err
			}
			return printJSON(cmd, pageOf(engine, toJobOutput))
		},
	}

	cmd.Flags().StringVarP(&criteria.Keyword, "keyword", "k", "", "match the title")
	cmd.Flags().StringVarP(&criteria.Location, "location", "l", "", "match the location")
	cmd.Flags().StringVarP(&criteria.Company, "company", "c", "", "match the company")
	cmd.Flags().IntVarP(&pageNum, "page", "p", 1, "page to show")
	return cmd
}

func newApplyCmd() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply to a job posting",
		Long:  "Apply to a job posting with the signed-in account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lt, err := startLifetime()
			if err != nil {
				return err
			}

			ctrl := listing.NewController(lt.client)
			if err := ctrl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("error fetching jobs: %w", err)
			}
			job, ok := ctrl.Find(jobID)
			if !ok {
				return fmt.Errorf("job %s not found", jobID)
			}

			if _, _, err := lt.signIn(cmd.Context()); err != nil {
				return err
			}

			result := workflow.NewApply(lt.client, lt.session).Run(cmd.Context(), job)
			switch result.Outcome {
			case workflow.OutcomeApplied:
				return printJSON(cmd, message{Message: result.Notice.Message})
			case workflow.OutcomeLoginRequested:
				return result.Err
			default:
				return fmt.Errorf("%s %w", result.Notice.Message, result.Err)
			}
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "ID of the job to apply to")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
