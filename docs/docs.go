// Package docs 注册 /swagger 使用的 OpenAPI 文档。
//
// 文档按 api 包中的 swag 注释维护，新增或修改路由时同步更新 paths。
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
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "用户登录，获取 JWT",
                "parameters": [
                    {"description": "登录信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "用户注册",
                "parameters": [
                    {"description": "注册信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "当前用户信息",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "刷新收入页面（收入列表、备注、汇总）",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "没有正在编辑的记录时新增，否则覆盖正在编辑的记录",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "新增或更新收入",
                "parameters": [
                    {"description": "表单", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/view.Form"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/incomes/{id}/edit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "选择收入进入编辑并回填表单",
                "parameters": [
                    {"type": "integer", "description": "收入ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/incomes/{id}/select": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "选中列表行（同时进入编辑）",
                "parameters": [
                    {"type": "integer", "description": "收入ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/deselect": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "取消列表选中",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/clear": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "清空表单和编辑状态",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/delete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "删除选中的收入",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "未选中收入", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/notes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "新增备注，空内容忽略",
                "parameters": [
                    {"description": "备注", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AddNoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/notes/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "删除备注",
                "parameters": [
                    {"type": "integer", "description": "备注ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "收入总额与来源拆分",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/income-view/summary/email": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["income-view"],
                "summary": "发送收入汇总邮件",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "用户未设置邮箱", "schema": {"$ref": "#/definitions/api.Response"}},
                    "503": {"description": "邮件服务未启用", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/export/incomes/csv": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["export"],
                "summary": "导出收入为 CSV",
                "responses": {
                    "200": {"description": "CSV 文件", "schema": {"type": "file"}}
                }
            }
        },
        "/api/v1/export/incomes/excel": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "导出收入为 Excel",
                "responses": {
                    "200": {"description": "xlsx 文件", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "api.AddNoteRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "Bonus expected in March"}
            }
        },
        "api.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "example": "password123"},
                "username": {"type": "string", "example": "alice"}
            }
        },
        "api.RegisterRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "maxLength": 50, "minLength": 6, "example": "password123"},
                "username": {"type": "string", "maxLength": 50, "minLength": 3, "example": "alice"}
            }
        },
        "api.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        },
        "view.Form": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "1500.00"},
                "date": {"type": "string", "example": "2024-03-01"},
                "payment_frequency": {"type": "string", "example": "Monthly"},
                "source": {"type": "string", "example": "Job"}
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

// SwaggerInfo 文档元信息，main 可按监听地址修改 Host
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "收入管理 API",
	Description:      "收入录入、编辑、删除、备注与按来源汇总",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
