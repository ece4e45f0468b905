// Package guard forces test mode before any package init runs side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VENDASCOPE_TEST_MODE") == "" {
			_ = os.Setenv("VENDASCOPE_TEST_MODE", "1")
		}
	})
}
