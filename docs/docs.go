// Package docs registers the OpenAPI description of the bench control API
// served at /swagger/index.html.
//
// The template is kept by hand in the layout swag init emits. When a handler
// annotation changes, update it here too; handlers tests check that every
// API route is described.
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
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "description": "Usernames are case-insensitive.",
                "summary": "Register an operator",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "description": "The token identifies the operator recorded on the runs they start.",
                "summary": "Sign in and obtain a bearer token",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/test/start": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates the merged configuration, resets the event log and starts the sequencer.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Start a test run",
                "parameters": [
                    {"description": "Overrides of the default configuration", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.StartTestRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, session, config, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/test/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Forces the sequencer to END; returns once the instruments are shut down.",
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Cancel the active test run",
                "responses": {
                    "200": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/test/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Get run state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RunState"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/test/defaults": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Get default test configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TestConfigResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "The log only holds the current (or last) run. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day. Pass the returned last_id as 'after' to fetch only newer events; an id from an earlier run returns the whole log.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List events of the current run",
                "parameters": [
                    {"type": "string", "example": "2026-03-02", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2026-03-02", "description": "End of range; date-only means end of day", "name": "to", "in": "query"},
                    {"enum": ["START", "STATE_CHANGE", "TELEMETRY", "STOP", "ERROR", "CANCEL"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"type": "string", "description": "Event ID cursor", "name": "after", "in": "query"},
                    {"type": "integer", "description": "Maximum number of events (1-1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, last_id, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.StartTestRequest": {
            "type": "object",
            "properties": {
                "temperature_setpoints": {"type": "array", "items": {"type": "number"}, "example": [10, 25, 45]},
                "stabilization_timeout_s": {"type": "number", "example": 2400},
                "temperature_tolerance": {"type": "number", "example": 0},
                "load_voltage": {"type": "number", "example": 20},
                "initial_current": {"type": "number", "example": 3},
                "final_current": {"type": "number", "example": 6},
                "current_step": {"type": "number", "example": 0.5},
                "poll_interval_s": {"type": "number", "example": 0.1},
                "settle_delay_s": {"type": "number", "example": 1}
            }
        },
        "handlers.TestConfigResponse": {
            "type": "object",
            "properties": {
                "temperature_setpoints": {"type": "array", "items": {"type": "number"}},
                "stabilization_timeout_s": {"type": "number"},
                "temperature_tolerance": {"type": "number"},
                "load_voltage": {"type": "number"},
                "initial_current": {"type": "number"},
                "final_current": {"type": "number"},
                "current_step": {"type": "number"},
                "poll_interval_s": {"type": "number"},
                "settle_delay_s": {"type": "number"}
            }
        },
        "models.RunState": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "session_id": {"type": "string"},
                "operator_id": {"type": "integer"},
                "state": {"type": "string", "example": "CONFIGURE_TEMPERATURE"},
                "step_index": {"type": "integer"},
                "target_temp_c": {"type": "number"},
                "actual_current_a": {"type": "number"},
                "measured_power_w": {"type": "number"},
                "error_codes": {"type": "array", "items": {"type": "string"}},
                "is_running": {"type": "boolean"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Load transient bench API",
	Description:      "Runs and monitors the load transient performance test.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
