package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZeroLogger é a implementação concreta da interface Logger sobre o zerolog,
// com saída JSON estruturada (ou console legível em desenvolvimento).
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger cria e retorna uma nova instância do Logger escrevendo em stdout.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewConsoleLogger usa o formato legível do zerolog, útil em ENV=development.
func NewConsoleLogger(level string) Logger {
	return NewWithWriter(level, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// NewWithWriter permite direcionar a saída (usado nos testes).
func NewWithWriter(level string, w io.Writer) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

// Fatal registra o erro e encerra o processo.
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.zl.Fatal().Err(err).Msg(msg)
}
