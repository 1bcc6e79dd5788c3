package v1

// Keys of the Struct documents exchanged by ButtonService.
const (
	FieldHostname           = "hostname"
	FieldUsername           = "username"
	FieldAccepted           = "accepted"
	FieldSnapshot           = "snapshot"
	FieldState              = "state"
	FieldSignals            = "signals"
	FieldIsLoading          = "is_loading"
	FieldContentAlpha       = "content_alpha"
	FieldAccessibilityLabel = "accessibility_label"
	FieldFetch              = "fetch"
	FieldResponseCode       = "response_code"
	FieldTimesFetched       = "times_fetched"
	FieldErrorMessage       = "error_message"
	FieldLastActor          = "last_actor"
	FieldTimestamp          = "timestamp"
)
