package logger

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"usermanagement_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesToRotatedFile(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir, FileName: "test.log", Level: "debug"}
	require.NoError(t, Init(cfg, "release"))

	zap.L().Info("hello")
	_ = zap.L().Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	assert.Error(t, Init(cfg, "release"))
	assert.Error(t, Init(nil, "release"))
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRecovery(true))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsBrokenPipeError(t *testing.T) {
	opErr := &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}
	assert.True(t, isBrokenPipeError(opErr))
	assert.True(t, isBrokenPipeError(errors.New("connection reset by peer")))
	assert.False(t, isBrokenPipeError(errors.New("timeout")))
	assert.False(t, isBrokenPipeError(nil))
}
