package veldt_test

import (
	"testing"

	veldt "github.com/veldt-dev/veldt"
	"github.com/veldt-dev/veldt/assert"
)

func TestConfigComesFromEnvironment(t *testing.T) {
	t.Setenv("VELDT_NAMESPACE", "prod-shard-7")
	t.Setenv("VELDT_LOG_LEVEL", "warn")

	w, err := veldt.NewWorld()
	assert.NilError(t, err)
	assert.Equal(t, "prod-shard-7", w.Namespace())
}

func TestOptionsOverrideEnvironment(t *testing.T) {
	t.Setenv("VELDT_NAMESPACE", "from-env")

	w, err := veldt.NewWorld(veldt.WithNamespace("from-option"), veldt.WithLogLevel("disabled"))
	assert.NilError(t, err)
	assert.Equal(t, "from-option", w.Namespace())
}

func TestInvalidLogLevelIsRejected(t *testing.T) {
	_, err := veldt.NewWorld(veldt.WithLogLevel("extremely-loud"))
	assert.ErrorContains(t, err, "log level")
}

func TestNegativeColumnCapacityIsRejected(t *testing.T) {
	_, err := veldt.NewWorld(veldt.WithColumnCapacity(-1), veldt.WithLogLevel("disabled"))
	assert.ErrorContains(t, err, "column capacity")
}

func TestWorldIDsAreUnique(t *testing.T) {
	a, err := veldt.NewWorld(veldt.WithLogLevel("disabled"))
	assert.NilError(t, err)
	b, err := veldt.NewWorld(veldt.WithLogLevel("disabled"))
	assert.NilError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}
