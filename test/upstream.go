package test

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"

	"github.com/celestiaorg/jobdesk/pkg/api/v1/routes"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// AdminRole is the role the fake account service requires for administrative routes
const AdminRole = "app_admin"

// Upstream is an in-memory job service and account service.
// Accounts are looked up by the bearer token registered for them.
type Upstream struct {
	clock clockwork.Clock

	mu            sync.Mutex
	jobs          []models.JobListing
	accounts      map[string]*models.UserAccount
	order         []string
	tokens        map[string]string
	notifications []models.NotificationLog
	failures      map[string]int
	requests      []string
}

// NewUpstream creates an empty upstream stamping applications with clock
func NewUpstream(clock clockwork.Clock) *Upstream {
	return &Upstream{
		clock:    clock,
		accounts: make(map[string]*models.UserAccount),
		tokens:   make(map[string]string),
		failures: make(map[string]int),
	}
}

// AddJobs appends job postings
func (u *Upstream) AddJobs(jobs ...models.JobListing) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.jobs = append(u.jobs, jobs...)
}

// AddAccount stores account. A non-empty token authenticates as it.
func (u *Upstream) AddAccount(account models.UserAccount, token string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	stored := account
	if _, ok := u.accounts[stored.ID]; !ok {
		u.order = append(u.order, stored.ID)
	}
	u.accounts[stored.ID] = &stored
	if token != "" {
		u.tokens[token] = stored.ID
	}
}

// Account returns a copy of the stored account
func (u *Upstream) Account(id string) (models.UserAccount, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	account, ok := u.accounts[id]
	if !ok {
		return models.UserAccount{}, false
	}
	return *account, true
}

// AddNotifications appends notification logs
func (u *Upstream) AddNotifications(logs ...models.NotificationLog) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notifications = append(u.notifications, logs...)
}

// Fail makes the named route answer with status until Restore is called
func (u *Upstream) Fail(route string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failures[route] = status
}

// Restore clears every injected failure
func (u *Upstream) Restore() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failures = make(map[string]int)
}

// Requests returns the "METHOD path" of every request received so far
func (u *Upstream) Requests() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.requests...)
}

// record logs the request and returns the injected failure for route, if any
func (u *Upstream) record(c *fiber.Ctx, route string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, c.Method()+" "+c.Path())
	if status, ok := u.failures[route]; ok {
		return fiber.NewError(status, "injected failure")
	}
	return nil
}

// caller resolves the bearer token to the stored account. u.mu must be held.
func (u *Upstream) caller(c *fiber.Ctx) (*models.UserAccount, error) {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || token == "" {
		return nil, fiber.ErrUnauthorized
	}
	id, ok := u.tokens[token]
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	account, ok := u.accounts[id]
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return account, nil
}

// admin resolves the caller and requires the admin role. u.mu must be held.
func (u *Upstream) admin(c *fiber.Ctx) error {
	account, err := u.caller(c)
	if err != nil {
		return err
	}
	if !account.HasRole(AdminRole) {
		return fiber.ErrForbidden
	}
	return nil
}

// jobHandler serves the job service routes
type jobHandler struct {
	upstream *Upstream
}

func (h jobHandler) ListJobs(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.ListJobs); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return c.JSON(append([]models.JobListing{}, u.jobs...))
}

// userHandler serves the account service routes
type userHandler struct {
	upstream *Upstream
}

func (h userHandler) ListUsers(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.ListUsers); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.admin(c); err != nil {
		return err
	}
	accounts := make([]models.UserAccount, 0, len(u.order))
	for _, id := range u.order {
		if account, ok := u.accounts[id]; ok {
			accounts = append(accounts, *account)
		}
	}
	return c.JSON(accounts)
}

func (h userHandler) ListNotifications(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.ListNotifications); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.admin(c); err != nil {
		return err
	}
	return c.JSON(append([]models.NotificationLog{}, u.notifications...))
}

func (h userHandler) GetCurrentUser(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.GetCurrentUser); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	account, err := u.caller(c)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (h userHandler) ApplyToJob(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.ApplyToJob); err != nil {
		return err
	}
	var req models.ApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	caller, err := u.caller(c)
	if err != nil {
		return err
	}
	if caller.ID != c.Params("id") {
		return fiber.ErrForbidden
	}
	caller.AppliedJobs = append(caller.AppliedJobs, models.AppliedJob{
		ExternalID: req.ExternalID,
		Title:      req.Title,
		Company:    req.Company,
		Location:   req.Location,
		URL:        req.URL,
		AppliedAt:  models.NewTimestamp(u.clock.Now()),
	})
	return c.Status(fiber.StatusCreated).JSON(caller)
}

func (h userHandler) UpdatePreferences(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.UpdatePreferences); err != nil {
		return err
	}
	var prefs models.Preferences
	if err := c.BodyParser(&prefs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := prefs.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	caller, err := u.caller(c)
	if err != nil {
		return err
	}
	if caller.ID != c.Params("id") {
		return fiber.ErrForbidden
	}
	caller.Preferences = &prefs
	return c.JSON(caller)
}

func (h userHandler) DeleteUser(c *fiber.Ctx) error {
	u := h.upstream
	if err := u.record(c, routes.DeleteUser); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.admin(c); err != nil {
		return err
	}
	id := c.Params("id")
	if _, ok := u.accounts[id]; !ok {
		return fiber.ErrNotFound
	}
	delete(u.accounts, id)
	for token, owner := range u.tokens {
		if owner == id {
			delete(u.tokens, token)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
