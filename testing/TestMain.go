package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("OPSDESK_TEST_MODE", "1")
		if os.Getenv("USER_SERVICE_URL") == "" {
			_ = os.Setenv("USER_SERVICE_URL", "http://127.0.0.1:0/api/v1")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
