package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"goficha/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RespeitaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("info", &buf)

	log.Debug("não deve aparecer", nil)
	log.Info("venda registrada", map[string]interface{}{"venda_id": "v1"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "venda registrada", entry["message"])
	assert.Equal(t, "v1", entry["venda_id"])
}

func TestLogger_ErroIncluiCampoError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("debug", &buf)

	log.Error("Falha ao debitar ficha", errors.New("conn reset"))

	assert.Contains(t, buf.String(), `"error":"conn reset"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestLogger_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("verbose", &buf)

	log.Debug("debug", nil)
	log.Warn("aviso", nil)

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"aviso"`)
}
