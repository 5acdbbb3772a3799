package caixarepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goficha/internal/domain"
	apperror "goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
)

// CaixaRepository implementa a interface domain.CaixaRepository
type CaixaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCaixaRepository cria uma nova instância do CaixaRepository, injetando o DB.
func NewCaixaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *CaixaRepository {
	return &CaixaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Criar insere um novo caixa no banco de dados.
func (r *CaixaRepository) Criar(ctx context.Context, caixa domain.Caixa) (domain.Caixa, error) {
	r.logger.Debug("Iniciando inserção de caixa no repositório.", map[string]interface{}{"nome": caixa.Nome})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO caixas (id, nome, senha_hash, criado_em) VALUES ($1, $2, $3, $4)`,
		caixa.ID, caixa.Nome, caixa.SenhaHash, caixa.CriadoEm,
	)
	if database.IsUniqueViolation(err, "") {
		return domain.Caixa{}, apperror.NewConflictError(fmt.Sprintf("Já existe um caixa com o nome '%s'", caixa.Nome))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir caixa no DB.", err)
		return domain.Caixa{}, apperror.NewDBError("Falha ao inserir caixa", err)
	}

	r.logger.Info("Caixa salvo com sucesso no repositório.", map[string]interface{}{"caixa_id": caixa.ID})
	return caixa, nil
}

func (r *CaixaRepository) buscar(ctx context.Context, campo, valor string) (domain.Caixa, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, nome, senha_hash, criado_em FROM caixas WHERE ` + campo + ` = $1`

	var caixa domain.Caixa
	err := r.DB.QueryRowContext(ctxTimeout, query, valor).Scan(
		&caixa.ID,
		&caixa.Nome,
		&caixa.SenhaHash,
		&caixa.CriadoEm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Caixa não encontrado no DB.", map[string]interface{}{campo: valor})
			return domain.Caixa{}, apperror.NewNotFoundError(fmt.Sprintf("Caixa '%s' não encontrado", valor))
		}
		r.logger.Error("Falha ao buscar caixa no DB.", err)
		return domain.Caixa{}, apperror.NewDBError("Falha ao buscar caixa", err)
	}
	return caixa, nil
}

// BuscarPorID busca um caixa pelo ID.
func (r *CaixaRepository) BuscarPorID(ctx context.Context, id string) (domain.Caixa, error) {
	return r.buscar(ctx, "id", id)
}

// BuscarPorNome busca um caixa pelo nome (usado no login).
func (r *CaixaRepository) BuscarPorNome(ctx context.Context, nome string) (domain.Caixa, error) {
	return r.buscar(ctx, "nome", nome)
}
