// Package api embeds the OpenAPI document of the HTTP interface.
package api

import _ "embed"

//go:embed openapi.yaml
var Document []byte
