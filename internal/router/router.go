// Package router decides which path handles an inbound message.
package router

// RestartText is the label of the reply-keyboard button that restarts the
// conversation. Pressing it sends this exact text.
const RestartText = "🔄 Start/Restart"

const StartCommand = "start"

type Action int

const (
	ActionIgnore Action = iota
	ActionRestart
	ActionUser
	ActionAdmin
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionRestart:
		return "restart"
	case ActionUser:
		return "user"
	case ActionAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Event is the part of an inbound message the routing decision depends on.
type Event struct {
	ChatID         int64
	OperatorChatID int64
	IsReply        bool
	Text           string
	// Command is the bot command without the leading slash, if any.
	Command string
}

type Router struct {
	restartText string
}

// New returns a Router recognising restartText as the restart trigger.
// An empty restartText falls back to RestartText.
func New(restartText string) Router {
	if restartText == "" {
		restartText = RestartText
	}
	return Router{restartText: restartText}
}

// Route maps ev to exactly one action. The restart trigger is checked before
// the chat table and works in every chat.
//
//	operator chat | reply | action
//	no            | any   | ActionUser
//	yes           | yes   | ActionAdmin
//	yes           | no    | ActionIgnore
func (r Router) Route(ev Event) Action {
	if ev.Text == r.restartText || ev.Command == StartCommand {
		return ActionRestart
	}
	if ev.ChatID != ev.OperatorChatID {
		return ActionUser
	}
	if ev.IsReply {
		return ActionAdmin
	}
	return ActionIgnore
}
