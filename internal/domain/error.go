package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"409"`
	Category string `json:"category" example:"ESTOQUE_INSUFICIENTE"`
	Message  string `json:"message" example:"Estoque insuficiente para realizar movimentação de saída."`
}
