package models

import "fmt"

// NotificationLog is a record of a notification sent by the account service
type NotificationLog struct {
	ID             string    `json:"id"`
	RecipientEmail string    `json:"recipientEmail"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SentAt         Timestamp `json:"sentAt"`
}

// Validate checks the log carries its identity key
func (n NotificationLog) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification log id is required")
	}
	return nil
}
