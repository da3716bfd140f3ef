package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/routes"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// newApp creates a fiber app logging requests through the package logger
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: logger.Writer(),
	}))
	return app
}

// SetupServer starts the job service and the account service on separate test servers,
// both backed by the suite's upstream
func SetupServer(suite *Suite) {
	suite.JobApp = newApp()
	routes.RegisterRoutes(suite.JobApp, jobHandler{upstream: suite.Upstream}, nil)
	suite.JobServer = httptest.NewServer(adaptor.FiberApp(suite.JobApp))

	suite.AccountApp = newApp()
	routes.RegisterRoutes(suite.AccountApp, nil, userHandler{upstream: suite.Upstream})
	suite.AccountServer = httptest.NewServer(adaptor.FiberApp(suite.AccountApp))

	// Update cleanup to close the servers
	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		if suite.JobServer != nil {
			suite.JobServer.Close()
		}
		if suite.AccountServer != nil {
			suite.AccountServer.Close()
		}
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}
