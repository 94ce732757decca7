package user

import (
	"os"
	"testing"

	"github.com/aetas/aetas/internal/test_utils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	test_utils.StopSharedDB()
	os.Exit(code)
}
