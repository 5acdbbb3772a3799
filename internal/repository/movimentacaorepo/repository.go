package movimentacaorepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
)

const colunas = `id, produto_id, caixa_id, quantidade, tipo, data`

// MovimentacaoRepository implementa domain.MovimentacaoRepository.
type MovimentacaoRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewMovimentacaoRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *MovimentacaoRepository {
	return &MovimentacaoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMovimentacao(s scanner) (domain.MovimentacaoEstoque, error) {
	var m domain.MovimentacaoEstoque
	err := s.Scan(&m.ID, &m.ProdutoID, &m.CaixaID, &m.Quantidade, &m.Tipo, &m.Data)
	return m, err
}

// Criar persiste uma nova movimentação.
func (r *MovimentacaoRepository) Criar(ctx context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	r.logger.Debug("Inserindo movimentação no repositório.", map[string]interface{}{
		"produto_id": m.ProdutoID,
		"tipo":       m.Tipo,
		"quantidade": m.Quantidade,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO movimentacoes_estoque (` + colunas + `)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + colunas

	created, err := scanMovimentacao(r.DB.QueryRowContext(ctxTimeout, query,
		m.ID, m.ProdutoID, m.CaixaID, m.Quantidade, m.Tipo, m.Data))
	if err != nil {
		r.logger.Error("Falha ao inserir movimentação no DB.", err)
		return domain.MovimentacaoEstoque{}, errors.NewDBError("Falha ao inserir movimentação", err)
	}
	return created, nil
}

func (r *MovimentacaoRepository) buscar(ctx context.Context, id string, lock bool) (domain.MovimentacaoEstoque, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM movimentacoes_estoque WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	m, err := scanMovimentacao(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.MovimentacaoEstoque{}, errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar movimentação no DB.", err)
		return domain.MovimentacaoEstoque{}, errors.NewDBError("Falha ao buscar movimentação", err)
	}
	return m, nil
}

func (r *MovimentacaoRepository) BuscarPorID(ctx context.Context, id string) (domain.MovimentacaoEstoque, error) {
	return r.buscar(ctx, id, false)
}

func (r *MovimentacaoRepository) BuscarParaAtualizar(ctx context.Context, id string) (domain.MovimentacaoEstoque, error) {
	return r.buscar(ctx, id, true)
}

// Atualizar grava quantidade e tipo da movimentação.
func (r *MovimentacaoRepository) Atualizar(ctx context.Context, m domain.MovimentacaoEstoque) (domain.MovimentacaoEstoque, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE movimentacoes_estoque SET quantidade = $1, tipo = $2
        WHERE id = $3
        RETURNING ` + colunas

	updated, err := scanMovimentacao(r.DB.QueryRowContext(ctxTimeout, query, m.Quantidade, m.Tipo, m.ID))
	if err == sql.ErrNoRows {
		return domain.MovimentacaoEstoque{}, errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", m.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar movimentação no DB.", err)
		return domain.MovimentacaoEstoque{}, errors.NewDBError("Falha ao atualizar movimentação", err)
	}
	return updated, nil
}

func (r *MovimentacaoRepository) Excluir(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM movimentacoes_estoque WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao excluir movimentação no DB.", err)
		return errors.NewDBError("Falha ao excluir movimentação", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Movimentação com ID %s não encontrada.", id))
	}
	return nil
}

// Listar retorna as movimentações mais recentes primeiro.
func (r *MovimentacaoRepository) Listar(ctx context.Context, filtro domain.MovimentacaoFiltro) ([]domain.MovimentacaoEstoque, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filtro.ProdutoID != "" {
		args = append(args, filtro.ProdutoID)
		where = append(where, fmt.Sprintf("produto_id = $%d", len(args)))
	}
	if filtro.Tipo != "" {
		args = append(args, filtro.Tipo)
		where = append(where, fmt.Sprintf("tipo = $%d", len(args)))
	}

	query := `SELECT ` + colunas + ` FROM movimentacoes_estoque`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filtro.Limit, (filtro.Page-1)*filtro.Limit)
	query += fmt.Sprintf(` ORDER BY data DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar movimentações.", err)
		return nil, errors.NewDBError("Falha ao listar movimentações", err)
	}
	defer rows.Close()

	movs := []domain.MovimentacaoEstoque{}
	for rows.Next() {
		m, err := scanMovimentacao(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler movimentação", err)
		}
		movs = append(movs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar movimentações", err)
	}
	return movs, nil
}

// Totais soma entradas e saídas persistidas do produto.
func (r *MovimentacaoRepository) Totais(ctx context.Context, produtoID string) (int, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT COALESCE(SUM(quantidade) FILTER (WHERE tipo = 'E'), 0),
               COALESCE(SUM(quantidade) FILTER (WHERE tipo = 'S'), 0)
        FROM movimentacoes_estoque
        WHERE produto_id = $1`

	var entradas, saidas int
	if err := r.DB.QueryRowContext(ctxTimeout, query, produtoID).Scan(&entradas, &saidas); err != nil {
		r.logger.Error("Falha ao somar movimentações.", err)
		return 0, 0, errors.NewDBError("Falha ao somar movimentações", err)
	}
	return entradas, saidas, nil
}
