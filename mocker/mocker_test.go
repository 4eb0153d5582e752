package mocker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceItem(t *testing.T) {
	assertT := assert.New(t)

	val := 1
	fun := func() string { return "org" }

	restoreVal := ReplaceItem(&val, 2)
	restoreFun := ReplaceItem(&fun, func() string { return "new" })
	assertT.Equal(2, val)
	assertT.Equal("new", fun())

	restoreVal()
	restoreFun()
	assertT.Equal(1, val)
	assertT.Equal("org", fun())
}

func TestChdir(t *testing.T) {
	assertT := assert.New(t)

	orgDir, _ := os.Getwd()
	dir, _ := filepath.EvalSymlinks(t.TempDir())

	restore := Chdir(dir)
	cur, _ := os.Getwd()
	cur, _ = filepath.EvalSymlinks(cur)
	assertT.Equal(dir, cur)

	restore()
	cur, _ = os.Getwd()
	assertT.Equal(orgDir, cur)

	assertT.Panics(func() { Chdir(filepath.Join(dir, "none")) })
}
