package domain

import (
	"context"
	"time"
)

// Caixa representa um caixa (ponto de venda) que registra movimentações, vendas e recargas.
// A senha nunca é persistida em texto puro: apenas o hash bcrypt.
type Caixa struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	SenhaHash string    `json:"-"`
	CriadoEm  time.Time `json:"criado_em"`
}

// RegistroCaixa é o payload de entrada para o cadastro de um caixa.
type RegistroCaixa struct {
	Nome  string `json:"nome" validate:"required,min=3,max=200"`
	Senha string `json:"senha" validate:"required,min=6"`
}

// LoginCaixa é o payload de autenticação de um caixa.
type LoginCaixa struct {
	Nome  string `json:"nome" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

// CaixaRepository define o contrato de persistência para a entidade Caixa.
type CaixaRepository interface {
	Criar(ctx context.Context, caixa Caixa) (Caixa, error)
	BuscarPorID(ctx context.Context, id string) (Caixa, error)
	BuscarPorNome(ctx context.Context, nome string) (Caixa, error)
}
