package event

// FilterBySource passes events whose metadata source equals source.
func FilterBySource(source string) FilterFunc {
	return func(evt any) bool {
		mp, ok := evt.(MetadataProvider)
		return ok && mp.EventMetadata().Source == source
	}
}

// FilterPayload passes Event[T] values whose payload satisfies predicate.
func FilterPayload[T any](predicate func(payload T) bool) FilterFunc {
	return func(evt any) bool {
		e, ok := evt.(Event[T])
		return ok && predicate(e.Payload)
	}
}

// FilterNot inverts a filter.
func FilterNot(f FilterFunc) FilterFunc {
	return func(evt any) bool {
		return !f(evt)
	}
}
