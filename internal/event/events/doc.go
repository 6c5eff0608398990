// Package events defines the topics and payloads a reading session
// publishes.
//
// Every payload is published wrapped in event.Event[T]:
//
//	evt := event.NewEvent(events.TopicPositionChanged,
//		events.PositionChanged{ChapterIndex: 2, ChapterProgress: 0.5}, "reader")
//
// Subscribers typically register on a wildcard such as "reader.command.*"
// or "reader.**".
package events
