package compilation

import (
	"github.com/crytic/harvester/events"
)

// SelectorEvents defines event emitters for a Selector.
type SelectorEvents struct {
	// BuildModeAttempted emits events after a build mode of a platform was run and its artifacts were extracted.
	BuildModeAttempted events.EventEmitter[BuildModeAttemptedEvent]

	// RepositoryProcessed emits events when Process has reached a terminal outcome for a repository.
	RepositoryProcessed events.EventEmitter[RepositoryProcessedEvent]
}

// BuildModeAttemptedEvent describes a single build mode attempt made by a Selector.
type BuildModeAttemptedEvent struct {
	// Repository is the path of the repository being processed
	Repository string
	// Platform is the identifier of the platform attempted
	Platform string
	// Mode is the name of the build mode attempted
	Mode string
	// CommandFailed indicates a command of the mode returned an error
	CommandFailed bool
	// Records is the number of contract records extracted after the mode ran
	Records int
}

// RepositoryProcessedEvent describes the outcome of Selector.Process for a repository.
type RepositoryProcessedEvent struct {
	// Repository is the path of the repository which was processed
	Repository string
	// Result is the selection result returned by Process
	Result SelectionResult
}
