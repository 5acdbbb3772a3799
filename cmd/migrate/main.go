package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"goficha/config"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: arquivo .env não encontrado, usando apenas o ambiente do sistema: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("goose: %v", err)
	}
	if cfg.StoreDriver != "postgres" {
		log.Fatalf("goose: migrações exigem STORE_DRIVER=postgres (atual: %s)", cfg.StoreDriver)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	db, err := database.NewPostgresDB(cfg.DatabaseURL, logger.NewConsoleLogger(cfg.LogLevel))
	if err != nil {
		log.Fatalf("goose: falha ao conectar ao banco: %v\n", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: falha ao fechar o banco: %v\n", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
