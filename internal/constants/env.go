// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvJobServiceURL is the base URL of the job service
	EnvJobServiceURL = "JOBDESK_JOB_SERVICE_URL"
	// EnvAccountServiceURL is the base URL of the account service
	EnvAccountServiceURL = "JOBDESK_ACCOUNT_SERVICE_URL"
	// EnvIssuerURL is the OpenID Connect issuer of the identity provider realm
	EnvIssuerURL = "JOBDESK_ISSUER_URL"
	// EnvClientID is the public OpenID Connect client id
	EnvClientID = "JOBDESK_CLIENT_ID"
	// EnvCallbackAddr is the loopback address the login redirect is received on
	EnvCallbackAddr = "JOBDESK_CALLBACK_ADDR"
	// EnvHandshakeMode selects login-required or anonymous start up
	EnvHandshakeMode = "JOBDESK_HANDSHAKE_MODE"
	// EnvAdminRole is the realm role that unlocks the administrator view
	EnvAdminRole = "JOBDESK_ADMIN_ROLE"
	// EnvHTTPTimeout bounds each service request; zero disables the bound
	EnvHTTPTimeout = "JOBDESK_HTTP_TIMEOUT"
	// EnvHandshakeTimeout bounds how long the login redirect is waited for
	EnvHandshakeTimeout = "JOBDESK_HANDSHAKE_TIMEOUT"
	// EnvLogLevel is the log level
	EnvLogLevel = "JOBDESK_LOG_LEVEL"
	// EnvLogFormat is the log format, text or json
	EnvLogFormat = "JOBDESK_LOG_FORMAT"
	// EnvLogFile is the file interactive sessions log to
	EnvLogFile = "JOBDESK_LOG_FILE"
)
