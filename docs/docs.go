// Package docs registra a documentação OpenAPI servida em /swagger/.
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
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/login": {"post": {"tags": ["auth"], "summary": "Autentica um operador"}},
        "/inventory": {
            "get": {"tags": ["inventory"], "summary": "Consulta o estoque",
                "parameters": [{"type": "string", "name": "q", "in": "query", "description": "Trecho do título ou ISBN"}]},
            "post": {"tags": ["inventory"], "summary": "Cadastra um título", "security": [{"ApiKeyAuth": []}]}
        },
        "/movements": {"post": {"tags": ["ledger"], "summary": "Registra uma movimentação", "security": [{"ApiKeyAuth": []}]}},
        "/transactions": {"get": {"tags": ["ledger"], "summary": "Lista o histórico de transações", "security": [{"ApiKeyAuth": []}]}},
        "/alerts": {"get": {"tags": ["ledger"], "summary": "Lista títulos com estoque baixo", "security": [{"ApiKeyAuth": []}]}},
        "/orders": {
            "post": {"tags": ["orders"], "summary": "Envia um pedido"},
            "get": {"tags": ["orders"], "summary": "Lista os pedidos recebidos", "security": [{"ApiKeyAuth": []}]}
        },
        "/reports/monthly-sales": {"get": {"tags": ["reports"], "summary": "Vendas mensais por título", "security": [{"ApiKeyAuth": []}]}},
        "/reports/valuation": {"get": {"tags": ["reports"], "summary": "Valor total do estoque", "security": [{"ApiKeyAuth": []}]}},
        "/reports/return-rates": {"get": {"tags": ["reports"], "summary": "Taxa de devolução por parceiro", "security": [{"ApiKeyAuth": []}]}},
        "/reports/pdf": {"get": {"tags": ["reports"], "summary": "Relatório consolidado em PDF", "produces": ["application/pdf"], "security": [{"ApiKeyAuth": []}]}}
    }
}`

// SwaggerInfo guarda as informações exportadas da API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "BookStock API",
	Description:      "Estoque de livros do departamento editorial: catálogo, movimentações, pedidos e relatórios.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
