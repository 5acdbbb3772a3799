package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusReserva é o estado de uma reserva.
type StatusReserva string

const (
	StatusPendente   StatusReserva = "pendente"
	StatusConfirmada StatusReserva = "confirmada"
	StatusCancelada  StatusReserva = "cancelada"
	StatusFinalizada StatusReserva = "finalizada"
)

// Ativa indica se a reserva ainda ocupa o pool de reserva do produto.
func (s StatusReserva) Ativa() bool {
	return s == StatusPendente || s == StatusConfirmada
}

// ReservaProduto é a reserva antecipada de um produto por CPF.
// Só pode existir uma reserva ativa por par (CPF, produto).
type ReservaProduto struct {
	ID              string        `json:"id"`
	CPF             string        `json:"cpf"`
	NomeCompleto    string        `json:"nome_completo"`
	ProdutoID       string        `json:"produto_id"`
	Quantidade      int           `json:"quantidade"`
	QRCodeReservaID string        `json:"qrcode_reserva_id"`
	FichaID         *string       `json:"ficha_id,omitempty"`
	VendaID         *string       `json:"venda_id,omitempty"`
	Status          StatusReserva `json:"status"`
	DataReserva     time.Time     `json:"data_reserva"`
	DataConfirmacao *time.Time    `json:"data_confirmacao,omitempty"`
	Observacoes     string        `json:"observacoes,omitempty"`
}

// ItemReserva é uma linha do pedido público de reserva.
type ItemReserva struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,gt=0"`
}

// NovaReserva é o pedido público de reserva feito a partir de um QR code.
type NovaReserva struct {
	CPF          string        `json:"cpf" validate:"required,len=11,number"`
	NomeCompleto string        `json:"nome_completo" validate:"required,min=3,max=200"`
	QRCodigo     string        `json:"qr_codigo" validate:"required"`
	Itens        []ItemReserva `json:"itens" validate:"required,min=1,dive"`
}

// VinculoFicha é o pedido do caixa para converter as reservas pendentes de um CPF em vendas.
// Se FichaID vier vazio, uma nova ficha é criada com Numero e SaldoInicial.
type VinculoFicha struct {
	CPF              string          `json:"cpf" validate:"required,len=11,number"`
	ReservaIDs       []string        `json:"reserva_ids" validate:"omitempty,dive,uuid"`
	FichaID          string          `json:"ficha_id" validate:"omitempty,uuid"`
	Numero           string          `json:"numero" validate:"required_without=FichaID,max=50"`
	SaldoInicial     decimal.Decimal `json:"saldo_inicial"`
	RegistrarRecarga bool            `json:"registrar_recarga"`
	CaixaID          string          `json:"-"`
}

// ResultadoVinculo resume a conversão das reservas em vendas.
type ResultadoVinculo struct {
	Ficha    Ficha            `json:"ficha"`
	Vendas   []Venda          `json:"vendas"`
	Reservas []ReservaProduto `json:"reservas"`
	Total    decimal.Decimal  `json:"total"`
}

// ItemReservado é uma linha do comprovante de reserva, com o preço vigente.
type ItemReservado struct {
	ID            string          `json:"id"`
	ProdutoID     string          `json:"produto_id"`
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	PrecoTotal    decimal.Decimal `json:"preco_total"`
}

// ComprovanteReserva é a resposta do pedido público de reserva.
type ComprovanteReserva struct {
	NomeCompleto string          `json:"nome_completo"`
	CPF          string          `json:"cpf"`
	Reservas     []ItemReservado `json:"reservas"`
	Total        decimal.Decimal `json:"total"`
	DataReserva  time.Time       `json:"data_reserva"`
}

// ResumoReservas lista as reservas ativas de um CPF com o total estimado.
type ResumoReservas struct {
	Reservas []ReservaProduto `json:"reservas"`
	Total    decimal.Decimal  `json:"total"`
}

// LinhaReservaQRCode é uma linha da tabela de reservas de um QR code.
type LinhaReservaQRCode struct {
	ID            string          `json:"id"`
	NomeCompleto  string          `json:"nome_completo"`
	CPF           string          `json:"cpf"`
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	PrecoTotal    decimal.Decimal `json:"preco_total"`
	Status        StatusReserva   `json:"status"`
	DataReserva   time.Time       `json:"data_reserva"`
}

// ReservaRepository é o contrato de persistência das reservas.
type ReservaRepository interface {
	Criar(ctx context.Context, reserva ReservaProduto) (ReservaProduto, error)
	BuscarPorID(ctx context.Context, id string) (ReservaProduto, error)
	BuscarParaAtualizar(ctx context.Context, id string) (ReservaProduto, error)
	// BuscarPorVenda bloqueia a reserva convertida na venda informada.
	BuscarPorVenda(ctx context.Context, vendaID string) (ReservaProduto, error)
	ExisteAtiva(ctx context.Context, cpf, produtoID string) (bool, error)
	// SomarAtivas soma as quantidades das reservas pendentes ou confirmadas do produto.
	SomarAtivas(ctx context.Context, produtoID string) (int, error)
	// ListarPorCPF lista as reservas do CPF; sem status, lista todas.
	ListarPorCPF(ctx context.Context, cpf string, status ...StatusReserva) ([]ReservaProduto, error)
	ListarPorQRCode(ctx context.Context, qrcodeID string) ([]ReservaProduto, error)
	Atualizar(ctx context.Context, reserva ReservaProduto) (ReservaProduto, error)
}
