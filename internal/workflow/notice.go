package workflow

import "fmt"

// User-facing notice texts
const (
	msgApplied        = "Applied to %s successfully!"
	msgApplyFailed    = "Failed to apply."
	msgAccountDeleted = "Account %s deleted."
	msgDeleteFailed   = "Failed to delete account."
	msgPrefsSaved     = "Preferences saved!"
	msgPrefsFailed    = "Failed to save."
)

// Notice is a message shown to the user until dismissed. Failures never carry
// error detail; that goes to the log.
type Notice struct {
	Message string
	Failure bool
}

// Empty reports whether there is nothing to show
func (n Notice) Empty() bool {
	return n.Message == ""
}

func success(format string, args ...interface{}) Notice {
	return Notice{Message: fmt.Sprintf(format, args...)}
}

func failure(msg string) Notice {
	return Notice{Message: msg, Failure: true}
}

// AppliedNotice reports a submitted application
func AppliedNotice(title string) Notice { return success(msgApplied, title) }

// ApplyFailedNotice reports a failed application
func ApplyFailedNotice() Notice { return failure(msgApplyFailed) }

// AccountDeletedNotice reports a deleted account
func AccountDeletedNotice(username string) Notice { return success(msgAccountDeleted, username) }

// DeleteFailedNotice reports a failed account deletion
func DeleteFailedNotice() Notice { return failure(msgDeleteFailed) }

// PreferencesSavedNotice reports saved preferences
func PreferencesSavedNotice() Notice { return success(msgPrefsSaved) }

// PreferencesFailedNotice reports preferences that could not be saved
func PreferencesFailedNotice() Notice { return failure(msgPrefsFailed) }
