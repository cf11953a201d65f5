// Package docs holds the OpenAPI description served under /swagger.
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
    "paths": {
        "/login": {"post": {"tags": ["auth"], "summary": "Log in; sets the session and token cookies and returns the token",
            "consumes": ["application/json", "application/x-www-form-urlencoded"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/register": {"post": {"tags": ["auth"], "summary": "Register a new user",
            "consumes": ["application/json", "application/x-www-form-urlencoded"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/logout": {"post": {"tags": ["auth"], "summary": "Log out; destroys the session and revokes the token",
            "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/sessions/current": {"get": {"tags": ["auth"], "summary": "Current principal, from the token or the session",
            "security": [{"BearerAuth": []}], "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/users/me": {"get": {"tags": ["users"], "summary": "Get the authenticated user",
            "security": [{"BearerAuth": []}], "produces": ["application/json"],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/users/me/password": {"put": {"tags": ["users"], "summary": "Change the authenticated user's password",
            "security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ChangePasswordRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/products": {
            "get": {"tags": ["products"], "summary": "List products", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Page size (default 10, max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page number, from 1", "name": "page", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "description": "Sort by price", "name": "sort", "in": "query"},
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "post": {"tags": ["products"], "summary": "Create a product", "security": [{"BearerAuth": []}],
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ProductRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/products/{id}": {
            "get": {"tags": ["products"], "summary": "Get a product", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "put": {"tags": ["products"], "summary": "Update a product", "security": [{"BearerAuth": []}],
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ProductRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "delete": {"tags": ["products"], "summary": "Delete a product", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/carts": {
            "get": {"tags": ["carts"], "summary": "Get the caller's cart with resolved products", "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "post": {"tags": ["carts"], "summary": "Create the caller's cart if it does not exist", "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/carts/{id}": {
            "get": {"tags": ["carts"], "summary": "Get a cart", "security": [{"BearerAuth": []}], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "put": {"tags": ["carts"], "summary": "Replace every item of a cart", "security": [{"BearerAuth": []}],
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ReplaceCartRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "delete": {"tags": ["carts"], "summary": "Remove every item of a cart", "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}},
        "/api/carts/{id}/product/{pid}": {
            "post": {"tags": ["carts"], "summary": "Add a product to a cart; an existing line has its quantity increased",
                "security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Product ID", "name": "pid", "in": "path", "required": true},
                    {"in": "body", "name": "request", "schema": {"$ref": "#/definitions/handler.AddProductRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "put": {"tags": ["carts"], "summary": "Replace the quantity of a cart line",
                "security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Product ID", "name": "pid", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.SetQuantityRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}},
            "delete": {"tags": ["carts"], "summary": "Remove a line from a cart", "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Cart ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Product ID", "name": "pid", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.Envelope"}}}}}
    },
    "definitions": {
        "errors.Envelope": {"type": "object", "properties": {
            "status": {"type": "string", "example": "success"},
            "payload": {},
            "message": {"type": "string"}}},
        "handler.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.RegisterRequest": {"type": "object", "required": ["email", "first_name", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string", "minLength": 5},
            "first_name": {"type": "string"}, "last_name": {"type": "string"}}},
        "handler.ChangePasswordRequest": {"type": "object", "required": ["current_password", "new_password"], "properties": {
            "current_password": {"type": "string"}, "new_password": {"type": "string", "minLength": 5}}},
        "handler.ProductRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "description": {"type": "string"}, "code": {"type": "string"},
            "price": {"type": "string", "example": "19.99"}, "stock": {"type": "integer", "minimum": 0},
            "category": {"type": "string"}, "status": {"type": "boolean"}}},
        "handler.ReplaceCartRequest": {"type": "object", "properties": {
            "items": {"type": "array", "items": {"$ref": "#/definitions/handler.CartItemRequest"}}}},
        "handler.CartItemRequest": {"type": "object", "required": ["product_id", "quantity"], "properties": {
            "product_id": {"type": "string"}, "quantity": {"type": "integer", "minimum": 1}}},
        "handler.AddProductRequest": {"type": "object", "properties": {"quantity": {"type": "integer", "minimum": 0}}},
        "handler.SetQuantityRequest": {"type": "object", "required": ["quantity"], "properties": {
            "quantity": {"type": "integer", "minimum": 1}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Storefront API",
	Description:      "Product catalog, carts, session and token authentication, and live updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
