// Package routes builds the web paths of the list and detail views.
package routes

import (
	"net/url"
	"strings"
)

// List returns /{route}.
func List(route string) string {
	return "/" + strings.Trim(strings.TrimSpace(route), "/")
}

// Detail returns /{route}/{assetNo} with assetNo escaped.
func Detail(route, assetNo string) string {
	return List(route) + "/" + url.PathEscape(strings.TrimSpace(assetNo))
}

// ListWith returns the list path with a non-empty query string built from
// params; empty values are dropped.
func ListWith(route string, params map[string]string) string {
	values := url.Values{}
	for key, value := range params {
		if value != "" {
			values.Set(key, value)
		}
	}
	if len(values) == 0 {
		return List(route)
	}
	return List(route) + "?" + values.Encode()
}
