// Package docs registers the OpenAPI document served at /v1/docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "PlayerToken": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"PlayerToken": []}],
    "paths": {
        "/auth/players": {
            "post": {"summary": "Issue a player identity and token", "security": [], "responses": {"201": {"description": "playerId and token"}}}
        },
        "/codes": {
            "post": {"summary": "Create a game code, or return the existing anchor", "responses": {"200": {"description": "anchor"}, "400": {"description": "invalid code"}}}
        },
        "/codes/{code}/join": {
            "post": {"summary": "Join a code under a nickname", "parameters": [{"name": "code", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "anchor"}, "404": {"description": "unknown code"}, "409": {"description": "nickname taken or already joined"}}}
        },
        "/codes/{code}/players": {
            "get": {"summary": "List players joined to a code", "parameters": [{"name": "code", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "players in join order"}}}
        },
        "/codes/{code}/sessions": {
            "post": {"summary": "Start a session for a code", "parameters": [{"name": "code", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "session"}, "403": {"description": "not the code creator"}, "409": {"description": "empty roster"}}}
        },
        "/codes/{code}/round": {
            "get": {"summary": "Current round of the live session for a code", "parameters": [{"name": "code", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "round"}, "404": {"description": "no live session"}}}
        },
        "/sessions": {
            "get": {"summary": "Sessions of the caller", "parameters": [{"name": "scope", "in": "query", "type": "string", "enum": ["owned", "played", "all", "active"]}], "responses": {"200": {"description": "sessions, newest first"}}}
        },
        "/sessions/{id}": {
            "get": {"summary": "Get a session", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "session"}, "404": {"description": "not found"}}}
        },
        "/sessions/{id}/rounds": {
            "get": {"summary": "Rounds of a session in play order", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "rounds"}}}
        },
        "/sessions/{id}/scores": {
            "get": {"summary": "Cumulative extraction per player", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "scores"}}}
        },
        "/rounds/{id}": {
            "get": {"summary": "Round with move progress", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "round info"}, "404": {"description": "not found"}}}
        },
        "/rounds/{id}/moves": {
            "post": {"summary": "Submit the caller's move", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "move"}, "403": {"description": "not in roster"}, "409": {"description": "already moved or round closed"}}}
        },
        "/rounds/{id}/close": {
            "post": {"summary": "Close the round once every player moved", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "closed with result, or awaiting_moves"}}}
        },
        "/ws/signals": {
            "get": {"summary": "Websocket stream of signals for the caller", "security": [], "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}], "responses": {"101": {"description": "switching protocols"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Commons API",
	Description:      "Round coordination for a shared, depleting resource pool.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
