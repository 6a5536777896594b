// Package docs holds the OpenAPI document served by swaggerkit
// regenerate with: swag init -g cmd/pubreg-api/main.go -o internal/services/api/docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
        "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with dependency checks", "responses": {"200": {"description": "ok"}}}},
        "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and version info", "responses": {"200": {"description": "ok"}}}},
        "/reports": {"post": {"tags": ["Reports"], "summary": "Build a distinct publication count report", "responses": {"200": {"description": "ok"}, "422": {"description": "invalid column or filter"}}}},
        "/reports/_columns": {"get": {"tags": ["Reports"], "summary": "List groupable columns and filter fields", "responses": {"200": {"description": "ok"}}}},
        "/reports/{name}": {"get": {"tags": ["Reports"], "summary": "Download a report", "parameters": [{"name": "name", "in": "path", "required": true, "schema": {"type": "string"}}], "responses": {"200": {"description": "attachment"}}}},
        "/reports/{name}/export": {"post": {"tags": ["Reports"], "summary": "Download a report built from a JSON body", "parameters": [{"name": "name", "in": "path", "required": true, "schema": {"type": "string"}}], "responses": {"200": {"description": "attachment"}}}},
        "/search": {
            "get": {"tags": ["Search"], "summary": "Full text search over committed documents", "responses": {"200": {"description": "ok"}}},
            "delete": {"tags": ["Search"], "summary": "Drop every document", "responses": {"200": {"description": "ok"}}}
        },
        "/search/documents": {
            "post": {"tags": ["Search"], "summary": "Stage documents for the next commit", "responses": {"200": {"description": "ok"}}},
            "delete": {"tags": ["Search"], "summary": "Remove documents by id", "responses": {"200": {"description": "ok"}}}
        },
        "/search/commit": {"post": {"tags": ["Search"], "summary": "Publish staged documents", "responses": {"200": {"description": "ok"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "Publication Registry API",
	Description:      "Distinct-count publication reports and search index administration",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
