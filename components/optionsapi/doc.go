// Package optionsapi provides a small net/http handler that serves option
// records as JSON in the shape remote choice sources consume.
//
// The handler responds to GET and HEAD requests with {"data": [...]}. It
// supports a search parameter matched against the configured search fields,
// limit and skip paging, a select projection, and exact-match filters on any
// other query parameter naming a record path.
package optionsapi
