package eventstore

import (
	"cmp"
	"slices"
	"time"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

// Filter selects the events of one consistency boundary.
//
// Items are OR'ed. Inside an item the event types are OR'ed and AND'ed with the predicates, which
// are OR'ed or AND'ed depending on AllPredicatesMustMatch. The optional occurrence window applies
// to every item. An empty Filter matches every event.
type Filter struct {
	items         []FilterItem
	occurredFrom  time.Time
	occurredUntil time.Time
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// OccurredFrom is the inclusive lower bound, zero when unbounded.
func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

// OccurredUntil is the inclusive upper bound, zero when unbounded.
func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// FilterItem is one OR branch of a Filter.
type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

// FilterPredicate matches a top level payload key against a string value.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

// P is shorthand for a FilterPredicate.
func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

// FilterBuilder is the entry point of the fluent filter API. The chain of interfaces only offers
// the combinations an engine can translate into one query:
//
//	BuildEventFilter().
//		Matching().AnyEventTypeOf(a, b).AndAnyPredicateOf(P("CopyID", c)).
//		OrMatching().AnyEventTypeOf(a).AndAnyPredicateOf(P("BorrowerID", r)).
//		OccurredFrom(from).AndOccurredUntil(until).
//		Finalize()
//
// Event types and predicates are sanitized on the way in: empty values are dropped, the rest is
// sorted and de-duplicated, so equal boundaries produce equal filters.
type FilterBuilder interface {
	Matching() EmptyFilterItemBuilder
	MatchingAnyEvent() Filter
	OccurredFrom(occurredFrom time.Time) TimeBoundedFilterBuilder
	OccurredUntil(occurredUntil time.Time) FinalFilterBuilder
}

type TimeBoundedFilterBuilder interface {
	AndOccurredUntil(occurredUntil time.Time) FinalFilterBuilder
	Finalize() Filter
}

type FinalFilterBuilder interface {
	Finalize() Filter
}

type EmptyFilterItemBuilder interface {
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates
	// AnyEventTypeIn is AnyEventTypeOf for a list built at runtime.
	AnyEventTypeIn(eventTypes []FilterEventTypeString) FilterItemBuilderLackingPredicates
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

type itemCloser interface {
	// OrMatching closes the current item and opens the next one.
	OrMatching() EmptyFilterItemBuilder
	Finalize() Filter
	OccurredFrom(occurredFrom time.Time) TimeBoundedFilterBuilder
	OccurredUntil(occurredUntil time.Time) FinalFilterBuilder
}

type FilterItemBuilderLackingPredicates interface {
	itemCloser
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
}

type FilterItemBuilderLackingEventTypes interface {
	itemCloser
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder
}

type CompletedFilterItemBuilder interface {
	itemCloser
}

type filterBuilder struct {
	filter  Filter
	current *FilterItem
}

// BuildEventFilter starts a filter. End the chain with Finalize or MatchingAnyEvent.
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.current = &FilterItem{}
	return fb
}

func (fb filterBuilder) MatchingAnyEvent() Filter {
	return fb.filter
}

func (fb filterBuilder) AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates {
	return fb.withEventTypes(append([]FilterEventTypeString{eventType}, eventTypes...))
}

func (fb filterBuilder) AnyEventTypeIn(eventTypes []FilterEventTypeString) FilterItemBuilderLackingPredicates {
	return fb.withEventTypes(eventTypes)
}

func (fb filterBuilder) AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder {
	return fb.withEventTypes(append([]FilterEventTypeString{eventType}, eventTypes...))
}

func (fb filterBuilder) AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes {
	return fb.withPredicates(false, predicate, predicates)
}

func (fb filterBuilder) AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes {
	return fb.withPredicates(true, predicate, predicates)
}

func (fb filterBuilder) AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder {
	return fb.withPredicates(false, predicate, predicates)
}

func (fb filterBuilder) AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder {
	return fb.withPredicates(true, predicate, predicates)
}

func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	return fb.closeItem().Matching()
}

func (fb filterBuilder) Finalize() Filter {
	return fb.closeItem().filter
}

func (fb filterBuilder) OccurredFrom(occurredFrom time.Time) TimeBoundedFilterBuilder {
	fb = fb.closeItem()
	fb.filter.occurredFrom = occurredFrom

	return fb
}

func (fb filterBuilder) AndOccurredUntil(occurredUntil time.Time) FinalFilterBuilder {
	fb.filter.occurredUntil = occurredUntil
	return fb
}

func (fb filterBuilder) OccurredUntil(occurredUntil time.Time) FinalFilterBuilder {
	fb = fb.closeItem()
	fb.filter.occurredUntil = occurredUntil

	return fb
}

func (fb filterBuilder) withEventTypes(eventTypes []FilterEventTypeString) filterBuilder {
	item := *fb.current
	item.eventTypes = sanitizeEventTypes(append(slices.Clone(item.eventTypes), eventTypes...))
	fb.current = &item

	return fb
}

func (fb filterBuilder) withPredicates(all bool, first FilterPredicate, rest []FilterPredicate) filterBuilder {
	item := *fb.current
	item.allPredicatesMustMatch = all
	item.predicates = sanitizePredicates(append(slices.Clone(item.predicates), append([]FilterPredicate{first}, rest...)...))
	fb.current = &item

	return fb
}

// closeItem moves the open item, if any, into the filter. Builders are values and items are
// copied before they change, so a shared prefix of a chain can be finalized more than once.
func (fb filterBuilder) closeItem() filterBuilder {
	if fb.current == nil {
		return fb
	}

	fb.filter.items = append(slices.Clip(fb.filter.items), *fb.current)
	fb.current = nil

	return fb
}

func sanitizeEventTypes(eventTypes []FilterEventTypeString) []FilterEventTypeString {
	eventTypes = slices.DeleteFunc(eventTypes, func(e FilterEventTypeString) bool { return e == "" })
	slices.Sort(eventTypes)

	return slices.Clip(slices.Compact(eventTypes))
}

func sanitizePredicates(predicates []FilterPredicate) []FilterPredicate {
	predicates = slices.DeleteFunc(predicates, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(predicates, func(a, b FilterPredicate) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.val, b.val))
	})

	return slices.Clip(slices.Compact(predicates))
}
