package recargarepo

import (
	"context"
	"time"

	"goficha/internal/domain"
	"goficha/internal/errors"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
)

// RecargaRepository persiste o histórico (append-only) de recargas.
type RecargaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewRecargaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *RecargaRepository {
	return &RecargaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

func (r *RecargaRepository) Criar(ctx context.Context, rec domain.Recarga) (domain.Recarga, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO recargas (id, ficha_id, valor, caixa_id, produto_id, observacao, data)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		rec.ID, rec.FichaID, rec.Valor, rec.CaixaID, rec.ProdutoID, rec.Observacao, rec.Data)
	if err != nil {
		r.logger.Error("Falha ao inserir recarga no DB.", err)
		return domain.Recarga{}, errors.NewDBError("Falha ao registrar recarga", err)
	}

	r.logger.Debug("Recarga registrada.", map[string]interface{}{"ficha_id": rec.FichaID, "valor": rec.Valor.String()})
	return rec, nil
}

// ListarPorFicha retorna as recargas da ficha, mais recentes primeiro.
func (r *RecargaRepository) ListarPorFicha(ctx context.Context, fichaID string) ([]domain.Recarga, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, ficha_id, valor, caixa_id, produto_id, observacao, data
        FROM recargas WHERE ficha_id = $1 ORDER BY data DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, fichaID)
	if err != nil {
		r.logger.Error("Falha ao listar recargas.", err)
		return nil, errors.NewDBError("Falha ao listar recargas", err)
	}
	defer rows.Close()

	recargas := []domain.Recarga{}
	for rows.Next() {
		var rec domain.Recarga
		if err := rows.Scan(&rec.ID, &rec.FichaID, &rec.Valor, &rec.CaixaID, &rec.ProdutoID, &rec.Observacao, &rec.Data); err != nil {
			return nil, errors.NewDBError("Falha ao ler recarga", err)
		}
		recargas = append(recargas, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar recargas", err)
	}
	return recargas, nil
}
