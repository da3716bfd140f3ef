package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/markup"
	"github.com/celestiaorg/jobdesk/internal/query"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

const (
	annotationInteractive = "interactive"
	summaryLength         = 160
)

// printJSON pretty prints v to the command's output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return nil
}

// page is one page of a filtered collection
type page[R any] struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
	Items      []R `json:"items"`
}

// selectPage moves the engine to the requested page. Pages past the end are an error
// rather than the silent no-op the interactive view uses.
func selectPage[R any, C any](engine *query.Engine[R, C], requested int) error {
	if requested == engine.CurrentPage() {
		return nil
	}
	if !engine.GoTo(requested) {
		return fmt.Errorf("page %d out of range (1-%d)", requested, engine.TotalPages())
	}
	return nil
}

func pageOf[R any, C any, O any](engine *query.Engine[R, C], convert func(R) O) page[O] {
	displayed := engine.Displayed()
	items := make([]O, 0, len(displayed))
	for _, record := range displayed {
		items = append(items, convert(record))
	}
	return page[O]{
		Page:       engine.CurrentPage(),
		TotalPages: engine.TotalPages(),
		Total:      engine.Len(),
		Items:      items,
	}
}

// jobOutput is a listing with its description reduced to a plain-text summary
type jobOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Summary  string `json:"summary,omitempty"`
}

func toJobOutput(job models.JobListing) jobOutput {
	return jobOutput{
		ID:       job.ID,
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
		URL:      job.URL,
		Summary:  markup.Excerpt(job.Description, summaryLength),
	}
}

// message is the output of commands that only report a notice
type message struct {
	Message string `json:"message"`
}
