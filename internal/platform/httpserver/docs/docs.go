// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "UserID": {"type": "apiKey", "name": "X-User-Id", "in": "header"}
    },
    "paths": {
        "/v1/wishes": {
            "post": {"tags": ["wishes"], "summary": "Create a wish", "security": [{"UserID": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "validation"}, "401": {"description": "missing user"}}}
        },
        "/v1/wishes/{wish_id}/pledges": {
            "post": {"tags": ["wishes"], "summary": "Pledge to a wish", "security": [{"UserID": []}], "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "wish not accepting pledges"}}}
        },
        "/v1/wishes/{wish_id}/proofs": {
            "post": {"tags": ["verification"], "summary": "Submit proof for a wish", "security": [{"UserID": []}], "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "not the creator"}, "409": {"description": "wish not active"}}}
        },
        "/v1/wishes/{wish_id}/votes": {
            "post": {"tags": ["verification"], "summary": "Cast a verification vote", "security": [{"UserID": []}], "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "duplicate vote or wrong status"}}}
        },
        "/v1/wishes/{wish_id}/verification": {
            "get": {"tags": ["verification"], "summary": "Verification status of a wish", "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}}
        },
        "/v1/wishes/{wish_id}/resolve": {
            "post": {"tags": ["verification"], "summary": "Resolve a wish", "security": [{"UserID": []}], "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/wishes/{wish_id}/cancel": {
            "post": {"tags": ["wishes"], "summary": "Cancel a wish", "security": [{"UserID": []}], "parameters": [{"name": "wish_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}}
        },
        "/v1/treasury": {
            "get": {"tags": ["treasury"], "summary": "Treasury statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/treasury/credits": {
            "get": {"tags": ["treasury"], "summary": "Recent treasury credits", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/proposals": {
            "get": {"tags": ["governance"], "summary": "List proposals", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["governance"], "summary": "Create a proposal", "security": [{"UserID": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "validation"}}}
        },
        "/v1/proposals/{proposal_id}": {
            "get": {"tags": ["governance"], "summary": "Get a proposal", "parameters": [{"name": "proposal_id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}}
        },
        "/v1/proposals/{proposal_id}/votes": {
            "post": {"tags": ["governance"], "summary": "Vote on a proposal", "security": [{"UserID": []}], "parameters": [{"name": "proposal_id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "duplicate ballot or closed"}}}
        },
        "/v1/proposals/{proposal_id}/execute": {
            "post": {"tags": ["governance"], "summary": "Execute a passed proposal", "security": [{"UserID": []}], "parameters": [{"name": "proposal_id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "not executable"}, "422": {"description": "insufficient funds"}}}
        },
        "/v1/leaderboard": {
            "get": {"tags": ["community"], "summary": "Supporter leaderboard", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/events": {
            "get": {"tags": ["realtime"], "summary": "Websocket event stream", "responses": {"101": {"description": "Switching Protocols"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "wishpact API",
	Description:      "Wishes, pledges, community verification and impact governance.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
