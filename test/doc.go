// Package test provides infrastructure and utilities for integration testing in jobdesk.
//
// The package runs an in-memory job service and account service behind real HTTP
// servers, so the controllers and workflows can be exercised over the same API
// client the application uses.
//
// The package provides:
//
//   - Suite: a complete test setup with the fake services, an upstream that
//     holds their data, and a signed-in session per test
//
//   - Upstream: the data behind the fake services, with helpers to seed jobs,
//     accounts and notifications, inject failures and inspect requests
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    s := test.NewSuite(t)
//	    defer s.Cleanup()
//
//	    s.Upstream.AddJobs(models.JobListing{ID: "job-1", Title: "Engineer"})
//	    lt := s.SignIn("ana", "app_user")
//
//	    // Use lt.Client and lt.Session with the controllers
//	}
package test
