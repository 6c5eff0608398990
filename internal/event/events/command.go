package events

import (
	"time"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/event/topic"
)

// Command lifecycle topics.
const (
	TopicCommandStarted     topic.Topic = "reader.command.started"
	TopicCommandRunningLong topic.Topic = "reader.command.runninglong"
	TopicCommandSucceeded   topic.Topic = "reader.command.succeeded"
	TopicCommandFailed      topic.Topic = "reader.command.failed"
)

// CommandStarted is published before a command executes.
type CommandStarted struct {
	SubmissionID string
	Command      command.Command
}

// CommandRunningLong is published for commands that wait on the surface.
type CommandRunningLong struct {
	SubmissionID string
	Command      command.Command
}

// CommandSucceeded is published when a command completes.
type CommandSucceeded struct {
	SubmissionID string
	Command      command.Command
	Duration     time.Duration
}

// CommandFailed is published when a command returns an error.
type CommandFailed struct {
	SubmissionID string
	Command      command.Command
	Err          error
	Duration     time.Duration
}
