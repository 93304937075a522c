package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
host: ":9000"
pprof_host: ":9001"
db: "host=localhost user=pulse dbname=pulse sslmode=disable"
dblog: true
token_secret: "tok"
notify_secret: "sig"
redis:
  enable: true
  host: "localhost:6379"
  channel: "pulse-notify"
client:
  read_message_size_limit: 2048
  compression: true
  compression_level: 2
  read_buffer_size: 512
  write_buffer_size: 512
  send_queue: 8
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	c, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, ":9000", c.Host)
	require.Equal(t, ":9001", c.PprofHost)
	require.True(t, c.DBLog)
	require.Equal(t, "tok", c.TokenSecret)
	require.Equal(t, "sig", c.NotifySecret)
	require.True(t, c.Redis.Enable)
	require.Equal(t, "pulse-notify", c.Redis.Channel)
	require.EqualValues(t, 2048, c.Client.ReadMessageSizeLimit)
	require.Equal(t, 8, c.Client.SendQueue)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`db: "x"`), 0o600))

	c, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Host)
	require.EqualValues(t, 64*1024, c.Client.ReadMessageSizeLimit)
	require.Equal(t, 1024, c.Client.ReadBufferSize)
	require.Equal(t, 16, c.Client.SendQueue)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
