package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("OPSDESK_TEST_MODE") == "" {
			_ = os.Setenv("OPSDESK_TEST_MODE", "1")
		}
	})
}
