package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "# comment\nSTORE_DRIVER=memory\nmongo_uri = 'mongodb://db:27017'\nbroken line\nPRICE_CACHE_TTL=\"45s\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "memory", out["STORE_DRIVER"])
	assert.Equal(t, "mongodb://db:27017", out["MONGO_URI"])
	assert.Equal(t, "45s", out["PRICE_CACHE_TTL"])
	assert.NotContains(t, out, "BROKEN LINE")
}

func TestMergeJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port": 9000, "log_mongo": true, "nested": {"x": 1}}`), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9000", out["APP_PORT"])
	assert.Equal(t, "true", out["LOG_MONGO"])
	assert.NotContains(t, out, "NESTED")
}

func TestMergeEnvironOnlyTakesShopKeys(t *testing.T) {
	out := defaultValues()
	mergeEnviron([]string{"APP_PORT=5000", "S3_BUCKET=assets", "HOME=/root", "PATH="}, out)

	assert.Equal(t, "5000", out["APP_PORT"])
	assert.Equal(t, "assets", out["S3_BUCKET"])
	assert.NotContains(t, out, "HOME")
}

func TestTypedAccessors(t *testing.T) {
	Set("TEST_TTL", "90")
	Set("TEST_FLAG", "yes")
	Set("TEST_COUNT", "nope")

	assert.Equal(t, 90*time.Second, Duration("TEST_TTL", time.Second))
	assert.True(t, Bool("TEST_FLAG", false))
	assert.Equal(t, 3, Int("TEST_COUNT", 3))

	Set("TEST_TTL", "2m")
	assert.Equal(t, 2*time.Minute, Duration("TEST_TTL", time.Second))
}

func TestStoreDriverFallsBackOnUnknown(t *testing.T) {
	Set("STORE_DRIVER", "cassandra")
	assert.Equal(t, "mongo", StoreDriver())

	Set("STORE_DRIVER", "Memory")
	assert.Equal(t, "memory", StoreDriver())
}
