// Package docs registra la especificación OpenAPI que sirve la UI de
// /api/docs. La plantilla se mantiene a mano junto con los handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Registro público de propietarios",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email ya registrado"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Entrega un token de acceso",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Credenciales inválidas"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Perfil del usuario autenticado",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "post": {"tags": ["users"], "security": [{"BearerAuth": []}], "summary": "Crea un usuario del personal", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["users"], "security": [{"BearerAuth": []}], "summary": "Lista usuarios", "responses": {"200": {"description": "OK"}}}
        },
        "/owners": {
            "post": {"tags": ["owners"], "security": [{"BearerAuth": []}], "summary": "Registra un propietario", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["owners"], "security": [{"BearerAuth": []}], "summary": "Lista propietarios", "responses": {"200": {"description": "OK"}}}
        },
        "/pets": {
            "post": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Registra una mascota y abre su historia clínica", "responses": {"201": {"description": "Created"}, "409": {"description": "Mascota duplicada"}}},
            "get": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Lista mascotas", "responses": {"200": {"description": "OK"}}}
        },
        "/services": {
            "post": {"tags": ["services"], "security": [{"BearerAuth": []}], "summary": "Crea un servicio del catálogo", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["services"], "security": [{"BearerAuth": []}], "summary": "Lista el catálogo", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments": {
            "post": {"tags": ["appointments"], "security": [{"BearerAuth": []}], "summary": "Agenda una cita (mínimo 4 horas de anticipación)", "responses": {"201": {"description": "Created"}, "409": {"description": "Agenda ocupada o fuera de plazo"}}},
            "get": {"tags": ["appointments"], "security": [{"BearerAuth": []}], "summary": "Lista citas", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{id}/cancel": {
            "post": {"tags": ["appointments"], "security": [{"BearerAuth": []}], "summary": "Cancela la cita; con menos de 4 horas queda como tardía", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments/{id}/reschedule": {
            "post": {"tags": ["appointments"], "security": [{"BearerAuth": []}], "summary": "Reprograma la cita hasta 2 horas antes", "responses": {"200": {"description": "OK"}}}
        },
        "/histories/{id}": {
            "get": {"tags": ["histories"], "security": [{"BearerAuth": []}], "summary": "Consulta una historia clínica", "responses": {"200": {"description": "OK"}}}
        },
        "/histories/{id}/consultations": {
            "post": {"tags": ["histories"], "security": [{"BearerAuth": []}], "summary": "Registra una atención (inmutable)", "responses": {"201": {"description": "Created"}}}
        },
        "/histories/{id}/export": {
            "get": {"tags": ["histories"], "security": [{"BearerAuth": []}], "summary": "Exporta la historia en CSV", "produces": ["text/csv"], "responses": {"200": {"description": "OK"}}}
        },
        "/triage": {
            "post": {"tags": ["triage"], "security": [{"BearerAuth": []}], "summary": "Registra el triaje de una cita y asigna prioridad", "responses": {"201": {"description": "Created"}}}
        },
        "/triage/queue": {
            "get": {"tags": ["triage"], "security": [{"BearerAuth": []}], "summary": "Cola de triajes pendientes por prioridad", "responses": {"200": {"description": "OK"}}}
        },
        "/inventory": {
            "post": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Crea un producto de inventario", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Lista el inventario", "responses": {"200": {"description": "OK"}}}
        },
        "/inventory/{id}/movements": {
            "post": {"tags": ["inventory"], "security": [{"BearerAuth": []}], "summary": "Registra un movimiento de stock", "responses": {"201": {"description": "Created"}, "409": {"description": "Stock insuficiente"}}}
        },
        "/dashboard": {
            "get": {"tags": ["dashboard"], "security": [{"BearerAuth": []}], "summary": "Resumen operativo del día", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo alimenta la plantilla de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Vet Clinic API",
	Description:      "API de gestión para clínicas veterinarias: propietarios, mascotas, citas, historias clínicas, triaje e inventario.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
