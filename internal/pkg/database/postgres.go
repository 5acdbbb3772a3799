package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goficha/internal/pkg/logger"

	"github.com/lib/pq"
)

// Querier é o subconjunto comum de *sql.DB e *sql.Tx usado pelos repositórios.
// Assim o mesmo repositório roda dentro ou fora de uma transação.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Código SQLSTATE de violação de unicidade no PostgreSQL.
const uniqueViolation = "23505"

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL.
// Retorna a conexão *sql.DB pronta para uso.
func NewPostgresDB(dataSourceName string, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Garante que as credenciais e o servidor estão corretos
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	log.Info("Pool de Conexões PostgreSQL configurado e pronto.", map[string]interface{}{
		"max_open_conns": 25,
	})

	return db, nil
}

// WithTransaction executa fn dentro de uma transação.
// Faz commit se fn retornar nil; rollback em caso de erro ou panic.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}
	return nil
}

// IsUniqueViolation indica se err é uma violação de restrição UNIQUE.
// Quando constraint não é vazio, exige também o nome da restrição/índice.
func IsUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
