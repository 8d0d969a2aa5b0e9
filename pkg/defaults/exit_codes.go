package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // All rules passed, or only non-blocking actions failed
	ExitPolicyFailed  = 1 // A failing rule's action is listed in fail_on
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitInputError    = 3 // Rule files or analysis records could not be used
	ExitInternalError = 4 // Unexpected internal error
)
