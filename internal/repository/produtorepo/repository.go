package produtorepo

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

	"github.com/lib/pq"
)

const colunas = `id, nome, unidade, preco, estoque, categoria, disponivel_reserva,
        limite_reserva, quantidade_reserva_disponivel, data_criacao`

// ProdutoRepository implementa domain.ProdutoRepository sobre PostgreSQL.
type ProdutoRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProdutoRepository cria o repositório. db pode ser um *sql.DB ou um *sql.Tx.
func NewProdutoRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *ProdutoRepository {
	return &ProdutoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduto(s scanner) (domain.Produto, error) {
	var p domain.Produto
	err := s.Scan(&p.ID, &p.Nome, &p.Unidade, &p.Preco, &p.Estoque, &p.Categoria,
		&p.DisponivelReserva, &p.LimiteReserva, &p.QuantidadeReservaDisponivel, &p.DataCriacao)
	return p, err
}

// Criar insere um novo produto.
func (r *ProdutoRepository) Criar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	r.logger.Debug("Inserindo produto no repositório.", map[string]interface{}{"produto_id": p.ID, "nome": p.Nome})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO produtos (` + colunas + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + colunas

	created, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query,
		p.ID, p.Nome, p.Unidade, p.Preco, p.Estoque, p.Categoria,
		p.DisponivelReserva, p.LimiteReserva, p.QuantidadeReservaDisponivel, p.DataCriacao,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	return created, nil
}

func (r *ProdutoRepository) buscar(ctx context.Context, id string, lock bool) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM produtos WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	p, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao buscar produto", err)
	}
	return p, nil
}

// BuscarPorID busca um produto sem bloquear a linha.
func (r *ProdutoRepository) BuscarPorID(ctx context.Context, id string) (domain.Produto, error) {
	return r.buscar(ctx, id, false)
}

// BuscarParaAtualizar busca o produto com SELECT ... FOR UPDATE.
// Só faz sentido dentro de uma transação.
func (r *ProdutoRepository) BuscarParaAtualizar(ctx context.Context, id string) (domain.Produto, error) {
	r.logger.Debug("Bloqueando linha do produto.", map[string]interface{}{"produto_id": id})
	return r.buscar(ctx, id, true)
}

// ListarPorIDs retorna os produtos existentes dentre ids, ordenados por nome.
func (r *ProdutoRepository) ListarPorIDs(ctx context.Context, ids []string) ([]domain.Produto, error) {
	if len(ids) == 0 {
		return []domain.Produto{}, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM produtos WHERE id = ANY($1::uuid[]) ORDER BY nome`
	rows, err := r.DB.QueryContext(ctxTimeout, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Falha ao listar produtos por IDs.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	return r.coletar(rows)
}

// Listar retorna produtos paginados, com filtro opcional por nome (ILIKE) e categoria.
func (r *ProdutoRepository) Listar(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	r.logger.Debug("Listando produtos.", map[string]interface{}{"page": filtro.Page, "limit": filtro.Limit})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filtro.Nome != "" {
		args = append(args, "%"+filtro.Nome+"%")
		where = append(where, fmt.Sprintf("nome ILIKE $%d", len(args)))
	}
	if filtro.Categoria != "" {
		args = append(args, filtro.Categoria)
		where = append(where, fmt.Sprintf("categoria = $%d", len(args)))
	}

	query := `SELECT ` + colunas + ` FROM produtos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filtro.Limit, (filtro.Page-1)*filtro.Limit)
	query += fmt.Sprintf(` ORDER BY nome LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar produtos.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	return r.coletar(rows)
}

func (r *ProdutoRepository) coletar(rows *sql.Rows) ([]domain.Produto, error) {
	produtos := []domain.Produto{}
	for rows.Next() {
		p, err := scanProduto(rows)
		if err != nil {
			r.logger.Error("Falha ao ler linha de produto.", err)
			return nil, errors.NewDBError("Falha ao ler produto", err)
		}
		produtos = append(produtos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}
	return produtos, nil
}

// Atualizar grava os campos de catálogo. A coluna estoque não é tocada.
func (r *ProdutoRepository) Atualizar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE produtos
        SET nome = $1, unidade = $2, preco = $3, categoria = $4, disponivel_reserva = $5,
            limite_reserva = $6, quantidade_reserva_disponivel = $7
        WHERE id = $8
        RETURNING ` + colunas

	updated, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query,
		p.Nome, p.Unidade, p.Preco, p.Categoria, p.DisponivelReserva,
		p.LimiteReserva, p.QuantidadeReservaDisponivel, p.ID,
	))
	if err == sql.ErrNoRows {
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", p.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	r.logger.Info("Produto atualizado no repositório.", map[string]interface{}{"produto_id": p.ID})
	return updated, nil
}

// AtualizarEstoque grava apenas a coluna estoque.
func (r *ProdutoRepository) AtualizarEstoque(ctx context.Context, id string, estoque int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `UPDATE produtos SET estoque = $1 WHERE id = $2`, estoque, id)
	if err != nil {
		r.logger.Error("Falha ao atualizar estoque do produto.", err)
		return errors.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado.", id))
	}

	r.logger.Debug("Estoque do produto gravado.", map[string]interface{}{"produto_id": id, "estoque": estoque})
	return nil
}
