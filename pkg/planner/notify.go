package planner

type NoticeKind string

const (
	NoticeLoading NoticeKind = "loading"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, user-facing message. Notices about one generation
// share its PlanID so a UI can replace the loading notice in place.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	PlanID  string     `json:"planId,omitempty"`
	Message string     `json:"message"`
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

const (
	msgLoading     = "Dato is crafting your itinerary..."
	msgReady       = "Your new adventure plan is ready!"
	msgFailed      = "Dato encountered an issue: "
	msgCleared     = "Your travel history has been cleared."
	msgDeleted     = "Plan deleted successfully."
	msgLoadFailed  = "Could not load saved plans."
	msgSaveFailed  = "Could not save your plans."
	msgInterrupted = "Generation was interrupted."
	msgCancelled   = "Generation was cancelled."
	msgTimedOut    = "The itinerary request timed out."

	maxNoticeLen = 100
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
