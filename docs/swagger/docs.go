// Package swagger holds the generated API documentation.
// Regenerate with: swag init -g cmd/server/server.go -o docs/swagger
package swagger

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
    "paths": {
        "/v1/access/{candidate_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Messages API"],
                "summary": "Check messaging access",
                "parameters": [
                    {"type": "string", "description": "Candidate user ID", "name": "candidate_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/messaging.AccessDecision"}}
                }
            }
        },
        "/v1/conversations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Conversations API"],
                "summary": "List conversations",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Conversations API"],
                "summary": "Create or get a conversation",
                "parameters": [
                    {"description": "Other participant and optional job", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requests.OpenConversationRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/v1/conversations/{conversation_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Conversations API"],
                "summary": "Get a conversation",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/conversations/{conversation_id}/context": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Conversations API"],
                "summary": "Override a conversation context",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/conversations/{conversation_id}/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messages API"],
                "summary": "List messages",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messages API"],
                "summary": "Send a message",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/v1/conversations/{conversation_id}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messages API"],
                "summary": "Mark a conversation as read",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/conversations/{conversation_id}/delivered": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messages API"],
                "summary": "Mark a conversation as delivered",
                "parameters": [{"type": "string", "name": "conversation_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/messages/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messages API"],
                "summary": "Mark messages as read",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "messaging.AccessDecision": {
            "type": "object",
            "properties": {
                "canMessage": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "requests.OpenConversationRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "jobId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Messaging API",
	Description:      "Recruiter and candidate messaging with access control and conversation context",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
