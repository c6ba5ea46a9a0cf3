package storefront

import (
	"github.com/asaskevich/EventBus"
)

// Bus topics.
const (
	TopicNotice         = "notice"
	TopicCartRefresh    = "cart:refresh"
	TopicCheckoutClosed = "checkout:closed"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient message for the user, the toast of the web shop.
type Notice struct {
	Level   Level
	Message string
}

// CartSummary is published after every cart mutation.
type CartSummary struct {
	Lines int
	Items int
	Total int64
}

// Notifier fans UI events out to whatever front end is attached.
type Notifier struct {
	bus EventBus.Bus
}

func NewNotifier() *Notifier {
	return &Notifier{bus: EventBus.New()}
}

func (n *Notifier) Notify(level Level, msg string) {
	n.bus.Publish(TopicNotice, Notice{Level: level, Message: msg})
}

func (n *Notifier) OnNotice(fn func(Notice)) error {
	return n.bus.Subscribe(TopicNotice, fn)
}

func (n *Notifier) OnCartRefresh(fn func(CartSummary)) error {
	return n.bus.Subscribe(TopicCartRefresh, fn)
}

func (n *Notifier) OnCheckoutClosed(fn func()) error {
	return n.bus.Subscribe(TopicCheckoutClosed, fn)
}

func (n *Notifier) cartChanged(s CartSummary) {
	n.bus.Publish(TopicCartRefresh, s)
}

func (n *Notifier) checkoutClosed() {
	n.bus.Publish(TopicCheckoutClosed)
}
