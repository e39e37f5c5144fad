package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academix Gradebook API",
        "description": "Multi-tenant school grading and report card service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and sessions"},
        {"name": "Grading Schemes", "description": "Grading schemes and boundary rules"},
        {"name": "Academic Years", "description": "Academic year management"},
        {"name": "Grades", "description": "Grade computation and queries"},
        {"name": "Report Cards", "description": "Report card compilation and publication"},
        {"name": "Transcripts", "description": "Lifetime transcript rollups"},
        {"name": "Exports", "description": "PDF and CSV downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Session revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        },
        "/grading-schemes": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "List grading schemes",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Schemes"}}
            },
            "post": {
                "tags": ["Grading Schemes"],
                "summary": "Create grading scheme",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/grading-schemes/{id}": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "Get scheme with boundaries",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Scheme"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Grading Schemes"],
                "summary": "Update scheme",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Grading Schemes"],
                "summary": "Delete scheme",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/grading-schemes/{id}/default": {
            "put": {
                "tags": ["Grading Schemes"],
                "summary": "Mark scheme as school default",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Default set"}}
            }
        },
        "/grading-schemes/{id}/boundaries": {
            "post": {
                "tags": ["Grading Schemes"],
                "summary": "Add boundary rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Invalid range"}}
            }
        },
        "/grading-schemes/{id}/boundaries/{boundaryId}": {
            "delete": {
                "tags": ["Grading Schemes"],
                "summary": "Remove boundary rule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "boundaryId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/academic-years": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "List academic years",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Years"}}
            },
            "post": {
                "tags": ["Academic Years"],
                "summary": "Create academic year",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/academic-years/current": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "Get current academic year",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Current year"}, "404": {"description": "None marked current"}}
            }
        },
        "/academic-years/{id}/current": {
            "put": {
                "tags": ["Academic Years"],
                "summary": "Mark academic year as current",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Current set"}}
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "academic_year_id", "in": "query", "type": "string"},
                    {"name": "term_type", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Grades"}}
            }
        },
        "/grades/compute": {
            "post": {
                "tags": ["Grades"],
                "summary": "Compute a subject grade",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Grade stored"},
                    "409": {"description": "Grade locked or concurrently modified"}
                }
            }
        },
        "/grades/compute-term": {
            "post": {
                "tags": ["Grades"],
                "summary": "Compute all subject grades for a term",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Grades stored"}}
            }
        },
        "/report-cards": {
            "get": {
                "tags": ["Report Cards"],
                "summary": "Fetch report card",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string", "required": true},
                    {"name": "academic_year_id", "in": "query", "type": "string", "required": true},
                    {"name": "term_type", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "Report card"}, "404": {"description": "Not found"}}
            }
        },
        "/report-cards/generate": {
            "post": {
                "tags": ["Report Cards"],
                "summary": "Compile a report card",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Report card compiled"}}
            }
        },
        "/report-cards/{id}/publish": {
            "post": {
                "tags": ["Report Cards"],
                "summary": "Publish a report card",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Published"},
                    "409": {"description": "Already published"}
                }
            }
        },
        "/report-cards/{id}/pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download report card PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "PDF document"}}
            }
        },
        "/transcripts/{studentId}": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Fetch student transcript",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "studentId", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Transcript"}, "404": {"description": "Student not found"}}
            }
        },
        "/transcripts/{studentId}/refresh": {
            "post": {
                "tags": ["Transcripts"],
                "summary": "Rebuild transcript from grade history",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "studentId", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Transcript rebuilt"}}
            }
        },
        "/classes/{id}/grades.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download class grade sheet CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "academic_year_id", "in": "query", "type": "string", "required": true},
                    {"name": "term_type", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "CSV document"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
