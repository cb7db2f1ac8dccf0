// Package model defines the configuration and state types shared by the choice
// field engine. FieldConfig mirrors the settings a host form declares for a
// radio or select boxes field: the source kind (static values, embedded JSON,
// a transform expression, or a remote endpoint), the property paths used to
// extract an option's value and label, the dependency that triggers a reload,
// and the client/remote search and paging settings. A FieldConfig is
// normalised once with Normalize and treated as immutable afterwards.
//
// LoadRequest, LoadState, and PaginationState describe one fetch attempt, the
// single-flight lifecycle of a field, and the offset/limit window respectively.
package model
