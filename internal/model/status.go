package model

// CommandState represents the lifecycle state of a submitted command
type CommandState string

const (
	// CommandQueued means the command waits in its worker queue
	CommandQueued CommandState = "Queued"

	// CommandRunning means a worker is executing the command
	CommandRunning CommandState = "Running"

	// CommandSucceeded means the engine confirmed the command
	CommandSucceeded CommandState = "Succeeded"

	// CommandFailed means the engine or the processor rejected the command
	CommandFailed CommandState = "Failed"

	// CommandCancelled means the command was cancelled before it finished
	CommandCancelled CommandState = "Cancelled"
)

// String returns the string representation of CommandState
func (cs CommandState) String() string {
	return string(cs)
}

// IsActive returns true if a worker is executing the command
func (cs CommandState) IsActive() bool {
	return cs == CommandRunning
}

// IsPending returns true if the command has not reached a terminal state
func (cs CommandState) IsPending() bool {
	return cs == CommandQueued || cs == CommandRunning
}

// IsFinished returns true if the command is in a terminal state (succeeded, failed, or cancelled)
func (cs CommandState) IsFinished() bool {
	return cs == CommandSucceeded || cs == CommandFailed || cs == CommandCancelled
}
