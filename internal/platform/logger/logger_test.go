package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf_CarriesCorrelationIDAndEscapesNewlines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	ctx := WithCorrelationID(context.Background(), "1234.5678")
	Errorf(ctx, "redeem failed:\n%s", "store down")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "1234.5678", line[CorrelationID])
	assert.Equal(t, "redeem failed:\\n store down", line["msg"])
	assert.Equal(t, "error", line["level"])
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { logger.SetLevel(logrus.InfoLevel) })

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestCorrelationIDFrom_Missing(t *testing.T) {
	assert.Equal(t, "", CorrelationIDFrom(context.Background()))
}
