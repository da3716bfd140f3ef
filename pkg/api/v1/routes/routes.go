// Package routes defines the job and account service routes and their URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first (i.e. job routes before user routes)
2. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
3. For clarity, naming should match the action (i.e. ListJobs, DeleteUser)

*/

// Service base configuration
const (
	// DefaultJobServicePort is the default port of the job service
	DefaultJobServicePort = "8082"
	// DefaultAccountServicePort is the default port of the account service
	DefaultAccountServicePort = "8081"
	// APIPrefix is the prefix for all service endpoints
	APIPrefix = "/api"
)

var (
	// DefaultJobServiceURL is the default base URL of the job service
	DefaultJobServiceURL = fmt.Sprintf("http://localhost:%s", DefaultJobServicePort)
	// DefaultAccountServiceURL is the default base URL of the account service
	DefaultAccountServiceURL = fmt.Sprintf("http://localhost:%s", DefaultAccountServicePort)
)

// Route names for lookup
const (
	// Job routes
	ListJobs = "ListJobs"

	// User routes
	ListUsers         = "ListUsers"
	ListNotifications = "ListNotifications"
	GetCurrentUser    = "GetCurrentUser"
	ApplyToJob        = "ApplyToJob"
	UpdatePreferences = "UpdatePreferences"
	DeleteUser        = "DeleteUser"
)

// JobHandler serves the job service routes
type JobHandler interface {
	ListJobs(c *fiber.Ctx) error
}

// UserHandler serves the account service routes
type UserHandler interface {
	ListUsers(c *fiber.Ctx) error
	ListNotifications(c *fiber.Ctx) error
	GetCurrentUser(c *fiber.Ctx) error
	ApplyToJob(c *fiber.Ctx) error
	UpdatePreferences(c *fiber.Ctx) error
	DeleteUser(c *fiber.Ctx) error
}

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures the job and account routes on app. Either handler may be nil
// when app only serves one of the two services.
//
// NOTE: route ordering is important because routes will try and match in the order they are registered.
// For example, if we registered a GET /:id before /me, "me" would be interpreted as a user ID.
func RegisterRoutes(app *fiber.App, jobHandler JobHandler, userHandler UserHandler) {
	api := app.Group(APIPrefix)

	if jobHandler != nil {
		jobs := api.Group("/jobs")
		jobs.Get("/", jobHandler.ListJobs).Name(ListJobs)
	}

	if userHandler != nil {
		users := api.Group("/users")
		users.Get("/", userHandler.ListUsers).Name(ListUsers)
		users.Get("/me", userHandler.GetCurrentUser).Name(GetCurrentUser)
		users.Get("/notifications", userHandler.ListNotifications).Name(ListNotifications)
		users.Post("/:id/jobs", userHandler.ApplyToJob).Name(ApplyToJob)
		users.Put("/:id/preferences", userHandler.UpdatePreferences).Name(UpdatePreferences)
		users.Delete("/:id", userHandler.DeleteUser).Name(DeleteUser)
	}
}

// noopHandler satisfies both handler interfaces for route extraction
type noopHandler struct{}

func (noopHandler) ListJobs(*fiber.Ctx) error          { return nil }
func (noopHandler) ListUsers(*fiber.Ctx) error         { return nil }
func (noopHandler) ListNotifications(*fiber.Ctx) error { return nil }
func (noopHandler) GetCurrentUser(*fiber.Ctx) error    { return nil }
func (noopHandler) ApplyToJob(*fiber.Ctx) error        { return nil }
func (noopHandler) UpdatePreferences(*fiber.Ctx) error { return nil }
func (noopHandler) DeleteUser(*fiber.Ctx) error        { return nil }

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		cache := make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app, noopHandler{}, noopHandler{})

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				cache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = cache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters. Parameter values are path-escaped.
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	// Replace parameters in the route
	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Job route helpers

// ListJobsURL returns the URL for listing job postings
func ListJobsURL() string {
	return BuildURL(ListJobs, nil, nil)
}

// User route helpers

// ListUsersURL returns the URL for listing accounts
func ListUsersURL() string {
	return BuildURL(ListUsers, nil, nil)
}

// ListNotificationsURL returns the URL for listing notification logs
func ListNotificationsURL() string {
	return BuildURL(ListNotifications, nil, nil)
}

// GetCurrentUserURL returns the URL for resolving the caller's account
func GetCurrentUserURL() string {
	return BuildURL(GetCurrentUser, nil, nil)
}

// ApplyToJobURL returns the URL for submitting an application for an account
func ApplyToJobURL(accountID string) string {
	return BuildURL(ApplyToJob, map[string]string{"id": accountID}, nil)
}

// UpdatePreferencesURL returns the URL for updating an account's preferences
func UpdatePreferencesURL(accountID string) string {
	return BuildURL(UpdatePreferences, map[string]string{"id": accountID}, nil)
}

// DeleteUserURL returns the URL for deleting an account
func DeleteUserURL(accountID string) string {
	return BuildURL(DeleteUser, map[string]string{"id": accountID}, nil)
}
