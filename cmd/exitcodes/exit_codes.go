package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeBuildFailures indicates that at least one repository could not be built while running in strict mode.
	// The failures were already reported.
	ExitCodeBuildFailures = 6

	// ExitCodeHandledError indicates that an error occurred and was already logged, so it should not be printed again.
	ExitCodeHandledError = 7
)
