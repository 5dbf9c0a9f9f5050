// Package docs is generated by swag init from the handler annotations.
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
        "/tasks": {
            "post": {
                "description": "Resolves the assignment mode (SINGLE, SHARED, SEQUENTIAL) and stores the task with its assignees",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"description": "Task", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/tasks/assign/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Reassign a task",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"description": "New owner", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/tasks/reorder": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Reorder tasks manually",
                "parameters": [
                    {"description": "New positions", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ReorderRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/tasks/employees/tasks": {
            "get": {
                "description": "Root tasks only; a status filter also matches roots with a matching subtask",
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "List tasks with stats",
                "parameters": [
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Status", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Project", "name": "projectId", "in": "query"},
                    {"type": "integer", "description": "Employee", "name": "assignedTo", "in": "query"},
                    {"type": "string", "description": "today | week | month | overdue | YYYY-MM-DD", "name": "date", "in": "query"},
                    {"type": "string", "description": "createdAt | dueDate | status | points | priority | description | order", "name": "sortBy", "in": "query"},
                    {"type": "string", "description": "asc | desc", "name": "sortOrder", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TaskListResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Get a task with subtasks and assignees",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task, its subtasks and their comments",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/tasks/{id}/status": {
            "patch": {
                "description": "Sequential tasks hand off to the next assignee on completion",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Change task status",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AssignRequest": {
            "type": "object",
            "required": ["assignedTo"],
            "properties": {"assignedTo": {"type": "integer"}}
        },
        "handlers.CreateTaskRequest": {
            "type": "object",
            "required": ["description", "projectId"],
            "properties": {
                "assignedTo": {"type": "integer"},
                "assignees": {"type": "array", "items": {"type": "integer"}},
                "description": {"type": "string"},
                "dueDate": {"type": "string"},
                "parentId": {"type": "integer"},
                "points": {"type": "number"},
                "priority": {"type": "string"},
                "projectId": {"type": "integer"},
                "status": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "handlers.ReorderRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/models.TaskOrder"}}}
        },
        "handlers.StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string"}}
        },
        "handlers.errorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "handlers.errorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handlers.errorBody"}}
        },
        "models.Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "models.StatusCounts": {
            "type": "object",
            "properties": {
                "completed": {"type": "integer"},
                "inProgress": {"type": "integer"},
                "pending": {"type": "integer"},
                "pendingReview": {"type": "integer"},
                "points": {"type": "number"},
                "total": {"type": "integer"}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "assignedAt": {"type": "string"},
                "assignedTo": {"type": "integer"},
                "assignees": {"type": "array", "items": {"$ref": "#/definitions/models.TaskAssignee"}},
                "completedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "createdBy": {"type": "integer"},
                "description": {"type": "string"},
                "dueDate": {"type": "string"},
                "id": {"type": "integer"},
                "order": {"type": "integer"},
                "parentId": {"type": "integer"},
                "points": {"type": "number"},
                "priority": {"type": "string"},
                "projectId": {"type": "integer"},
                "status": {"type": "string"},
                "subtasks": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}},
                "totalPoints": {"type": "number"},
                "type": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.TaskAssignee": {
            "type": "object",
            "properties": {
                "assignedAt": {"type": "string"},
                "completedAt": {"type": "string"},
                "employeeId": {"type": "integer"},
                "id": {"type": "integer"},
                "isCompleted": {"type": "boolean"},
                "order": {"type": "integer"},
                "taskId": {"type": "integer"}
            }
        },
        "models.TaskListResult": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/models.Pagination"},
                "stats": {"$ref": "#/definitions/models.TaskStats"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}
            }
        },
        "models.TaskOrder": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "integer"},
                "order": {"type": "integer"}
            }
        },
        "models.TaskStats": {
            "type": "object",
            "properties": {
                "global": {"$ref": "#/definitions/models.StatusCounts"},
                "root": {"$ref": "#/definitions/models.StatusCounts"}
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
	Title:            "Taskdesk API",
	Description:      "Task assignment, hand-off and aggregation endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
