// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/availableguides": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Guide counts per city",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.CityGuideCount"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/guides": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Guides"],
                "summary": "Guides near a point",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "latitude", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "longitude", "in": "query", "required": true},
                    {"type": "string", "description": "Language code", "name": "language", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.GuidesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/guides/{guideId}/play": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Guides"],
                "summary": "Record a play",
                "parameters": [
                    {"type": "integer", "description": "Guide ID", "name": "guideId", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.PlayResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Liveness and dependency health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/locations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Search places",
                "parameters": [
                    {"type": "string", "description": "Free text", "name": "location", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.LocationResult"}}}
                }
            }
        },
        "/media/{guideId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Photos and audio of a guide",
                "parameters": [
                    {"type": "integer", "description": "Guide ID", "name": "guideId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MediaBundle"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Catalogue statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Statistics"}}
                }
            }
        },
        "/tags": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "Filter tags",
                "parameters": [
                    {"type": "string", "description": "Language code", "name": "language", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TagsResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.CityGuideCount": {
            "type": "object",
            "properties": {
                "city": {"type": "string"},
                "nraudioguides": {"type": "integer"}
            }
        },
        "domain.Guide": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "original_title": {"type": "string"},
                "guide": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "nrplays": {"type": "integer"},
                "city": {"type": "string"},
                "language": {"type": "string"},
                "distance": {"type": "number"}
            }
        },
        "domain.MediaBundle": {
            "type": "object",
            "properties": {
                "photos": {"type": "array", "items": {"type": "string"}},
                "audio": {"type": "string"}
            }
        },
        "domain.Statistics": {
            "type": "object",
            "properties": {
                "guides": {"type": "integer"},
                "cities": {"type": "integer"},
                "total_plays": {"type": "integer"},
                "by_language": {"type": "object", "additionalProperties": {"type": "integer"}},
                "last_updated": {"type": "string"}
            }
        },
        "dto.GuidesResponse": {
            "type": "object",
            "properties": {
                "guides": {"type": "array", "items": {"$ref": "#/definitions/domain.Guide"}}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "dto.LocationResult": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "city": {"type": "string"},
                "coordinates": {"type": "string"}
            }
        },
        "dto.PlayResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "dto.TagsResponse": {
            "type": "object",
            "properties": {
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Audioguide Discovery API",
	Description:      "Nearby audio guides, tags, places, media and play counts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
