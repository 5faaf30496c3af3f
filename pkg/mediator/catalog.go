package mediator

import (
	"reflect"
	"sort"
)

// RequestInfo describes one registered request type.
type RequestInfo struct {
	Request   string   `json:"request"`
	Response  string   `json:"response"`
	Handler   string   `json:"handler"`
	Behaviors []string `json:"behaviors,omitempty"`
}

// NotificationInfo describes one notification type and its subscribers.
type NotificationInfo struct {
	Notification string   `json:"notification"`
	Subscribers  []string `json:"subscribers"`
}

// Catalog is a snapshot of what a Mediator can dispatch.
type Catalog struct {
	Requests      []RequestInfo      `json:"requests"`
	Notifications []NotificationInfo `json:"notifications"`
}

// Catalog lists the registered requests, in name order, with the behaviors
// wrapping each (outermost first), and the notification subscribers.
func (m *Mediator) Catalog() Catalog {
	var cat Catalog
	for t, h := range m.handlers {
		info := RequestInfo{
			Request:  t.String(),
			Response: h.respType.String(),
			Handler:  h.name,
		}
		for _, b := range m.behaviorsFor(h) {
			info.Behaviors = append(info.Behaviors, b.name)
		}
		cat.Requests = append(cat.Requests, info)
	}
	sort.Slice(cat.Requests, func(i, j int) bool {
		return cat.Requests[i].Request < cat.Requests[j].Request
	})

	for t, subs := range m.subscribers {
		cat.Notifications = append(cat.Notifications, NotificationInfo{
			Notification: t.String(),
			Subscribers:  subscriberNames(subs),
		})
	}
	sort.Slice(cat.Notifications, func(i, j int) bool {
		return cat.Notifications[i].Notification < cat.Notifications[j].Notification
	})
	return cat
}

// Handles reports whether a handler is registered for the dynamic type of req.
func (m *Mediator) Handles(req any) bool {
	if req == nil {
		return false
	}
	_, ok := m.handlers[reflect.TypeOf(req)]
	return ok
}

func subscriberNames(subs []subscriberEntry) []string {
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.name
	}
	return names
}
