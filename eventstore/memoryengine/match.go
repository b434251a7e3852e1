package memoryengine

import (
	"errors"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// matches mirrors the SQL engines: items are OR'ed, inside an item the event types are OR'ed and
// AND'ed with the predicates, and the time boundaries apply to all items.
func matches(filter eventstore.Filter, stored storedEvent) bool {
	occurredAt := stored.event.OccurredAt

	if from := filter.OccurredFrom(); !from.IsZero() && occurredAt.Before(from) {
		return false
	}

	if until := filter.OccurredUntil(); !until.IsZero() && occurredAt.After(until) {
		return false
	}

	if len(filter.Items()) == 0 {
		return true
	}

	for _, item := range filter.Items() {
		if matchesEventType(item, stored.event.EventType) && matchesPredicates(item, stored.payload) {
			return true
		}
	}

	return false
}

func matchesEventType(item eventstore.FilterItem, eventType string) bool {
	if len(item.EventTypes()) == 0 {
		return true
	}

	for _, candidate := range item.EventTypes() {
		if candidate == eventType {
			return true
		}
	}

	return false
}

func matchesPredicates(item eventstore.FilterItem, payload map[string]any) bool {
	if len(item.Predicates()) == 0 {
		return true
	}

	for _, predicate := range item.Predicates() {
		value, ok := payload[predicate.Key()].(string)
		hit := ok && value == predicate.Val()

		if item.AllPredicatesMustMatch() && !hit {
			return false
		}

		if !item.AllPredicatesMustMatch() && hit {
			return true
		}
	}

	return item.AllPredicatesMustMatch()
}

func errorsJoinQuery(err error) error {
	return errors.Join(eventstore.ErrQueryingEventsFailed, err)
}

func errorsJoinAppend(err error) error {
	return errors.Join(eventstore.ErrAppendingEventFailed, err)
}
