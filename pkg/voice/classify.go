package voice

import "strings"

type ErrorClass string

const (
	ClassInsufficientCredits  ErrorClass = "insufficient_credits"
	ClassInvalidCredential    ErrorClass = "invalid_credential"
	ClassNetworkError         ErrorClass = "network_error"
	ClassSessionEndedNormally ErrorClass = "session_ended_normally"
	ClassUnknown              ErrorClass = "unknown"
)

const genericRetryMessage = "The interview system is temporarily unavailable. " +
	"This is typically a short-lived issue; please retry, or wait a few minutes and try again."

// Classify normalizes a raw provider error into the error taxonomy.
// The provider's own "meeting ended" signal is not an error at all and
// maps to session_ended_normally.
func Classify(err *ProviderError) (ErrorClass, string) {
	if err == nil {
		return ClassUnknown, genericRetryMessage
	}

	msg := err.Message

	switch {
	case containsAny(msg, "Meeting ended", "Meeting has ended", "ejection"):
		return ClassSessionEndedNormally, "Interview session ended normally"
	case containsAny(msg, "Wallet Balance", "Purchase More Credits", "insufficient credits"):
		return ClassInsufficientCredits, "Voice provider account has insufficient credits. Please add credits to continue."
	case containsAny(msg, "Unauthorized", "Invalid API key"):
		return ClassInvalidCredential, "Voice provider API key is invalid or expired. Please check the configured credential."
	case containsAny(msg, "network", "fetch", "connection"):
		return ClassNetworkError, "Network error connecting to the voice provider. Please check your internet connection and retry."
	case msg == "" && err.Kind == "":
		// Empty error object, usually a credential or billing problem the
		// provider chose not to describe.
		return ClassUnknown, genericRetryMessage
	case err.Kind == "start-method-error":
		return ClassUnknown, genericRetryMessage
	default:
		return ClassUnknown, "Voice provider error: " + msg
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
