package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QRCodeReserva é o token de campanha que abre uma janela de reservas.
type QRCodeReserva struct {
	ID            string    `json:"id"`
	Codigo        string    `json:"codigo"`
	Descricao     string    `json:"descricao"`
	DataInicio    time.Time `json:"data_inicio"`
	DataExpiracao time.Time `json:"data_expiracao"`
	Ativo         bool      `json:"ativo"`
	ProdutoIDs    []string  `json:"produto_ids"`
	DataCriacao   time.Time `json:"data_criacao"`
}

// NovoQRCode é o payload de criação de um QR code de reservas.
type NovoQRCode struct {
	Descricao     string     `json:"descricao" validate:"max=255"`
	DataInicio    *time.Time `json:"data_inicio"`
	DataExpiracao *time.Time `json:"data_expiracao"`
	ProdutoIDs    []string   `json:"produto_ids" validate:"required,min=1,dive,uuid"`
}

// AtualizacaoQRCode permite alterar a janela, o estado e os produtos de um QR code.
type AtualizacaoQRCode struct {
	Descricao     *string    `json:"descricao" validate:"omitempty,max=255"`
	DataInicio    *time.Time `json:"data_inicio"`
	DataExpiracao *time.Time `json:"data_expiracao"`
	Ativo         *bool      `json:"ativo"`
	ProdutoIDs    []string   `json:"produto_ids" validate:"omitempty,dive,uuid"`
}

// CatalogoQRCode é a visão pública dos produtos reserváveis de um QR code.
type CatalogoQRCode struct {
	Codigo        string            `json:"codigo"`
	Descricao     string            `json:"descricao"`
	DataExpiracao time.Time         `json:"data_expiracao"`
	Produtos      []ProdutoCatalogo `json:"produtos"`
}

// ProdutoCatalogo é um produto como aparece no catálogo público.
// Disponivel é o pool de reserva menos as reservas ativas, nunca negativo.
type ProdutoCatalogo struct {
	ID            string          `json:"id"`
	Nome          string          `json:"nome"`
	Unidade       Unidade         `json:"unidade"`
	Preco         decimal.Decimal `json:"preco"`
	Categoria     string          `json:"categoria"`
	LimiteReserva int             `json:"limite_reserva"`
	Disponivel    int             `json:"disponivel"`
}

// QRCodeRepository é o contrato de persistência dos QR codes.
type QRCodeRepository interface {
	Criar(ctx context.Context, qr QRCodeReserva) (QRCodeReserva, error)
	BuscarPorID(ctx context.Context, id string) (QRCodeReserva, error)
	BuscarPorCodigo(ctx context.Context, codigo string) (QRCodeReserva, error)
	Atualizar(ctx context.Context, qr QRCodeReserva) (QRCodeReserva, error)
}
