// Package listing loads the public job postings into a filterable, paginated view.
package listing

import (
	"context"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/query"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// JobSource lists job postings
type JobSource interface {
	ListJobs(ctx context.Context) ([]models.JobListing, error)
}

// Ticket identifies one fetch. Only the latest ticket may commit.
type Ticket uint64

// Fetched is the outcome of a fetch waiting to be committed
type Fetched struct {
	Ticket Ticket
	Jobs   []models.JobListing
	Err    error
}

// Controller owns the job listing state. Begin and Commit must be called from the
// goroutine owning the state; Fetch is safe to call from anywhere.
type Controller struct {
	source  JobSource
	engine  *query.Engine[models.JobListing, query.JobCriteria]
	loading bool
	ticket  Ticket
	err     error
}

// NewController creates a Controller. The options configure the query engine.
func NewController(source JobSource, opts ...query.Option) *Controller {
	return &Controller{
		source: source,
		engine: query.NewJobEngine(opts...),
	}
}

// Begin marks the listing as loading and returns the ticket for a new fetch,
// invalidating any fetch still in flight
func (c *Controller) Begin() Ticket {
	c.ticket++
	c.loading = true
	return c.ticket
}

// Fetch requests the postings. It does not touch controller state.
func (c *Controller) Fetch(ctx context.Context, ticket Ticket) Fetched {
	jobs, err := c.source.ListJobs(ctx)
	return Fetched{Ticket: ticket, Jobs: jobs, Err: err}
}

// Commit applies a fetch result. Results of superseded fetches are discarded
// and false is returned.
func (c *Controller) Commit(f Fetched) bool {
	if f.Ticket != c.ticket {
		logger.Debugf("Discarding stale job listing fetch %d, current is %d", f.Ticket, c.ticket)
		return false
	}

	c.loading = false
	c.err = f.Err
	if f.Err != nil {
		logger.Errorf("Failed to load job listings: %v", f.Err)
		c.engine.SetRecords(nil)
		return true
	}

	logger.Debugf("Loaded %d job listings", len(f.Jobs))
	c.engine.SetRecords(f.Jobs)
	return true
}

// Load runs a fetch and commits it
func (c *Controller) Load(ctx context.Context) error {
	f := c.Fetch(ctx, c.Begin())
	c.Commit(f)
	return f.Err
}

// Loading reports whether a fetch is outstanding
func (c *Controller) Loading() bool {
	return c.loading
}

// Err returns the failure of the last committed fetch
func (c *Controller) Err() error {
	return c.err
}

// Engine returns the query engine holding the postings
func (c *Controller) Engine() *query.Engine[models.JobListing, query.JobCriteria] {
	return c.engine
}

// Find returns the posting with the given id
func (c *Controller) Find(id string) (models.JobListing, bool) {
	for _, job := range c.engine.Records() {
		if job.ID == id {
			return job, true
		}
	}
	return models.JobListing{}, false
}
