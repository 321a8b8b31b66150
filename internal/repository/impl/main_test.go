package impl

import (
	"os"
	"testing"
)

// liveDSN 非空时运行依赖真实 Postgres 的测试
var liveDSN string

func TestMain(m *testing.M) {
	if os.Getenv("RUN_REPOSITORY_TESTS") == "1" {
		liveDSN = os.Getenv("RPG_TEST_DATABASE_URL")
	}
	os.Exit(m.Run())
}

func requireLiveDB(t *testing.T) {
	t.Helper()
	if liveDSN == "" {
		t.Skip("需要 RUN_REPOSITORY_TESTS=1 与 RPG_TEST_DATABASE_URL 指向可用的 Postgres")
	}
}
