package dispatcher

import "time"

// Hooks observe command execution. They run on the worker goroutine, so a
// hook sees submissions in execution order and never concurrently.
type Hooks struct {
	Started     func(sub Submission)
	RunningLong func(sub Submission)
	Finished    func(sub Submission, err error, elapsed time.Duration)
}

func (h Hooks) started(sub Submission) {
	if h.Started != nil {
		h.Started(sub)
	}
}

func (h Hooks) runningLong(sub Submission) {
	if h.RunningLong != nil {
		h.RunningLong(sub)
	}
}

func (h Hooks) finished(sub Submission, err error, elapsed time.Duration) {
	if h.Finished != nil {
		h.Finished(sub, err, elapsed)
	}
}
