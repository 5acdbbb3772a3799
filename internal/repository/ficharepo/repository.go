package ficharepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"

	"github.com/shopspring/decimal"
)

const colunas = `id, numero, saldo, ativo, deletado_em, deletado_por_caixa_id, criado_em`

// FichaRepository implementa domain.FichaRepository.
type FichaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewFichaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *FichaRepository {
	return &FichaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFicha(s scanner) (domain.Ficha, error) {
	var f domain.Ficha
	err := s.Scan(&f.ID, &f.Numero, &f.Saldo, &f.Ativo, &f.DeletadoEm, &f.DeletadoPorCaixaID, &f.CriadoEm)
	return f, err
}

// Criar insere a ficha. Número duplicado vira ConflictError.
func (r *FichaRepository) Criar(ctx context.Context, f domain.Ficha) (domain.Ficha, error) {
	r.logger.Debug("Inserindo ficha no repositório.", map[string]interface{}{"numero": f.Numero})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO fichas (` + colunas + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + colunas

	created, err := scanFicha(r.DB.QueryRowContext(ctxTimeout, query,
		f.ID, f.Numero, f.Saldo, f.Ativo, f.DeletadoEm, f.DeletadoPorCaixaID, f.CriadoEm))
	if database.IsUniqueViolation(err, "fichas_numero_key") {
		return domain.Ficha{}, errors.NewConflictError(fmt.Sprintf("Já existe uma ficha com o número %s.", f.Numero))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir ficha no DB.", err)
		return domain.Ficha{}, errors.NewDBError("Falha ao inserir ficha", err)
	}
	return created, nil
}

func (r *FichaRepository) buscar(ctx context.Context, campo, valor string, lock bool) (domain.Ficha, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM fichas WHERE ` + campo + ` = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	f, err := scanFicha(r.DB.QueryRowContext(ctxTimeout, query, valor))
	if err == sql.ErrNoRows {
		return domain.Ficha{}, errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", valor))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar ficha no DB.", err)
		return domain.Ficha{}, errors.NewDBError("Falha ao buscar ficha", err)
	}
	return f, nil
}

func (r *FichaRepository) BuscarPorID(ctx context.Context, id string) (domain.Ficha, error) {
	return r.buscar(ctx, "id", id, false)
}

// BuscarParaAtualizar bloqueia a linha da ficha (SELECT ... FOR UPDATE).
func (r *FichaRepository) BuscarParaAtualizar(ctx context.Context, id string) (domain.Ficha, error) {
	return r.buscar(ctx, "id", id, true)
}

func (r *FichaRepository) BuscarPorNumero(ctx context.Context, numero string) (domain.Ficha, error) {
	return r.buscar(ctx, "numero", numero, false)
}

// AtualizarSaldo grava apenas a coluna saldo.
func (r *FichaRepository) AtualizarSaldo(ctx context.Context, id string, saldo decimal.Decimal) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `UPDATE fichas SET saldo = $1 WHERE id = $2`, saldo, id)
	if err != nil {
		r.logger.Error("Falha ao atualizar saldo da ficha.", err)
		return errors.NewDBError("Falha ao atualizar saldo", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", id))
	}
	return nil
}

// MarcarExcluida faz a exclusão lógica da ficha.
func (r *FichaRepository) MarcarExcluida(ctx context.Context, id, caixaID string, quando time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE fichas SET ativo = FALSE, deletado_em = $1, deletado_por_caixa_id = $2
        WHERE id = $3`

	result, err := r.DB.ExecContext(ctxTimeout, query, quando, caixaID, id)
	if err != nil {
		r.logger.Error("Falha ao excluir ficha no DB.", err)
		return errors.NewDBError("Falha ao excluir ficha", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Ficha %s não encontrada.", id))
	}

	r.logger.Info("Ficha excluída logicamente.", map[string]interface{}{"ficha_id": id, "caixa_id": caixaID})
	return nil
}
