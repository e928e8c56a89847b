// Package docs registra la especificación OpenAPI servida en /swagger.
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
        "/schedule": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Calendario de vacunación activo",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/children": {
            "get": {
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "Listar mis niños",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "Registrar niño",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/children/{childID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["children"],
                "summary": "Perfil del niño",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/children/{childID}/doses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Historial de dosis aplicadas",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["doses"],
                "summary": "Registrar dosis aplicada",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/children/{childID}/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Estado de vacunación",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/children/{childID}/certificate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Constancia de vacunación",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/children/{childID}/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Listar notificaciones del niño",
                "parameters": [
                    {"type": "string", "name": "childID", "in": "path", "required": true},
                    {"type": "string", "name": "state", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/children/{childID}/notifications/sync": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Sincronizar notificaciones",
                "parameters": [{"type": "string", "name": "childID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/notifications/{notificationID}/sent": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Marcar notificación como enviada",
                "parameters": [{"type": "string", "name": "notificationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/notifications/{notificationID}/read": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Marcar notificación como leída",
                "parameters": [{"type": "string", "name": "notificationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Child Immunization History API",
	Description:      "Historial de vacunación infantil, estado según calendario y notificaciones a tutores.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
