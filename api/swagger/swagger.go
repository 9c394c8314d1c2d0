package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutoring API",
        "description": "Tutoring coordination service: accounts, recurring lessons, tasks, messaging",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Registration and sign in"},
        {"name": "Admin", "description": "Account moderation"},
        {"name": "Lessons", "description": "Recurring lesson calendar"},
        {"name": "Tasks", "description": "Assignments and grading"},
        {"name": "Messages", "description": "Student/teacher chat"},
        {"name": "Reports", "description": "Grade report downloads"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account pending approval"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/pending": {
            "get": {
                "tags": ["Admin"],
                "summary": "List registrations awaiting approval",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/approve/{id}": {
            "post": {
                "tags": ["Admin"],
                "summary": "Approve a pending account",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Approved"},
                    "404": {"description": "Account not found"}
                }
            }
        },
        "/admin/reject/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Reject a pending account",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Rejected"}
                }
            }
        },
        "/lessons/events": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Calendar events for the authenticated user",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "required": true},
                    {"name": "to", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid window"}
                }
            }
        },
        "/lessons/assign/{student_id}": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Create a recurring lesson series",
                "parameters": [
                    {"name": "student_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid range"},
                    "409": {"description": "Scheduling conflict"}
                }
            }
        },
        "/lessons/events/{event_id}": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete the series an event belongs to",
                "parameters": [
                    {"name": "event_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Malformed identifier"}
                }
            }
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List the caller's tasks",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Issue a task to a student",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/tasks/{id}/submit": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Submit an answer",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Submitted"}
                }
            }
        },
        "/tasks/{id}/grade": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Grade a submission",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Graded"},
                    "409": {"description": "Not submitted yet"}
                }
            }
        },
        "/messages/{peer_id}": {
            "get": {
                "tags": ["Messages"],
                "summary": "Read the conversation with one peer",
                "parameters": [
                    {"name": "peer_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Messages"],
                "summary": "Post a message",
                "parameters": [
                    {"name": "peer_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/reports/grades/{student_id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a grade report",
                "parameters": [
                    {"name": "student_id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
