package logging

// These constants are used to identify the various services that may do some logging
const (
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// EXTRACTION_SERVICE is the constant used to identify the artifact extraction adapters
	EXTRACTION_SERVICE = "extraction"
	// REPORTING_SERVICE is the constant used to identify the reporting package
	REPORTING_SERVICE = "reporting"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)
