// Package docs регистрирует swagger-спецификацию HTTP API в swag.
// Аннотации к обработчикам лежат в internal/delivery/v1/http.
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
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Заказы в статусе",
                "parameters": [
                    {
                        "enum": ["PENDING", "CONFIRMED", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"],
                        "type": "string",
                        "description": "Статус",
                        "name": "status",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.OrderResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Проверяет остатки, списывает их и сохраняет заказ атомарно: при любой ошибке ничего не меняется",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Оформление заказа",
                "parameters": [
                    {
                        "description": "Заказ",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateOrderRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.OrderResponse"}},
                    "400": {"description": "Ошибка валидации или недостаточно товара", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Товар не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders/customer/{email}": {
            "get": {
                "description": "Точное совпадение email",
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Заказы покупателя",
                "parameters": [
                    {"type": "string", "description": "Email покупателя", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.OrderResponse"}}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Заказ по id",
                "parameters": [
                    {"type": "integer", "description": "ID заказа", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "description": "Статус перезаписывается без проверки допустимости перехода",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Смена статуса заказа",
                "parameters": [
                    {"type": "integer", "description": "ID заказа", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Новый статус",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.UpdateOrderStatusRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "description": "Весь каталог или товары одной категории (точное совпадение)",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Список товаров",
                "parameters": [
                    {"type": "string", "description": "Категория", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Без sku генерируется UUID, без slug он строится из названия, без остатка ставится 0",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Создание товара",
                "parameters": [
                    {
                        "description": "Товар",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateProductRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/search": {
            "get": {
                "description": "Подстрока в названии без учёта регистра",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Поиск товаров",
                "parameters": [
                    {"type": "string", "description": "Строка поиска", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Товар по id",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/image": {
            "put": {
                "description": "Сохраняет изображение в объектное хранилище и записывает его URL в товар",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Загрузка изображения товара",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Изображение (jpeg, png, webp, gif, svg)", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/stock": {
            "put": {
                "description": "Перезаписывает остаток товара",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Установка остатка",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Новый остаток",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.UpdateStockRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customerEmail": {"type": "string", "example": "ann@example.com"},
                "customerName": {"type": "string", "example": "Ann"},
                "shippingAddress": {"type": "string", "example": "1 Main St"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.OrderItemRequest"}}
            }
        },
        "http.OrderItemRequest": {
            "type": "object",
            "properties": {
                "productId": {"type": "integer", "example": 1},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "http.UpdateOrderStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "SHIPPED"}
            }
        },
        "http.CreateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Desk Lamp"},
                "description": {"type": "string"},
                "price": {"type": "number", "example": 24.5},
                "imageUrl": {"type": "string"},
                "category": {"type": "string", "example": "Home & Kitchen"},
                "stockQuantity": {"type": "integer", "example": 10},
                "sku": {"type": "string", "example": "HOME-100"},
                "slug": {"type": "string", "example": "desk-lamp"}
            }
        },
        "http.UpdateStockRequest": {
            "type": "object",
            "properties": {
                "stockQuantity": {"type": "integer", "example": 25}
            }
        },
        "http.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Premium Cotton T-Shirt"},
                "description": {"type": "string"},
                "price": {"type": "number", "example": 39.99},
                "imageUrl": {"type": "string"},
                "category": {"type": "string", "example": "Clothing"},
                "stockQuantity": {"type": "integer", "example": 200},
                "sku": {"type": "string", "example": "CLTH-001"},
                "slug": {"type": "string", "example": "premium-cotton-tshirt"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.OrderItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "productId": {"type": "integer"},
                "productName": {"type": "string"},
                "unitPrice": {"type": "number"},
                "quantity": {"type": "integer"},
                "subtotal": {"type": "number"}
            }
        },
        "http.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "customerEmail": {"type": "string"},
                "customerName": {"type": "string"},
                "shippingAddress": {"type": "string"},
                "status": {"type": "string", "example": "PENDING"},
                "totalAmount": {"type": "number", "example": 25},
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.OrderItemResponse"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Product not found with id: 42"},
                "status": {"type": "integer", "example": 404},
                "timestamp": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Shop Orders API",
	Description:      "Каталог товаров и оформление заказов с атомарным списанием остатков.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
