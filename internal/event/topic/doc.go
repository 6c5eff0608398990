// Package topic provides hierarchical topic names and wildcard matching for
// the event bus.
//
// Topics use dot-notation:
//
//	reader.position.changed
//	reader.bookmark.created
//	reader.command.failed
//
// Two wildcards are supported in subscription patterns:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	reader.bookmark.*     matches reader.bookmark.created, reader.bookmark.deleted
//	reader.**             matches every reader topic
//	*.command.failed      matches reader.command.failed
//	**                    matches everything
package topic
