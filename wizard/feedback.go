package wizard

import "time"

// FeedbackLifetime is how long a submission message stays visible.
const FeedbackLifetime = 5 * time.Second

// FeedbackStatus is the outcome of a submission.
type FeedbackStatus int

const (
	FeedbackNone FeedbackStatus = iota
	FeedbackApplied
	FeedbackFailed
)

// Feedback is the transient message shown after a submission.
type Feedback struct {
	Status FeedbackStatus
	At     time.Time
	Err    error
}

// Applied reports a successful submission at now.
func Applied(now time.Time) Feedback { return Feedback{Status: FeedbackApplied, At: now} }

// Failed reports a failed submission at now.
func Failed(now time.Time, err error) Feedback {
	return Feedback{Status: FeedbackFailed, At: now, Err: err}
}

// Expired reports whether the message is gone at now.
func (f Feedback) Expired(now time.Time) bool {
	return f.Status == FeedbackNone || !now.Before(f.At.Add(FeedbackLifetime))
}

// Message returns the text to show at now, or "" once expired.
func (f Feedback) Message(now time.Time) string {
	if f.Expired(now) {
		return ""
	}
	if f.Status == FeedbackApplied {
		return "Applied"
	}
	return "Failed"
}
