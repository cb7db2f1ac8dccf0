// Package openapi derives choice field configurations from the request
// schemas of an OpenAPI document. Enumerations become static sources and
// properties carrying an x-endpoint extension become remote sources.
package openapi
