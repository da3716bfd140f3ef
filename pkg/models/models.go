// Package models defines the records exchanged with the job and account services.
//
// Every record decoded from the wire is validated before it is handed to the
// rest of the client; see the Validate methods.
package models
