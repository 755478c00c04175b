package mongodb_test

import (
	"testing"
	"time"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	opts := mongodb.NewDefaultOptions("default", "mongodb://localhost:27017")
	require.NoError(t, opts.Validate())
	assert.Equal(t, uint64(100), opts.MaxPoolSize)

	opts.Uri = ""
	assert.Error(t, opts.Validate())
}

func TestMongoOptionUnreachable(t *testing.T) {
	rt := core.NewRuntime()
	err := mongodb.New(
		mongodb.WithClient(mongodb.DefaultName, "mongodb://127.0.0.1:1/?directConnection=true",
			func(o *mongodb.MongoOptions) {
				o.Timeout = 200 * time.Millisecond
				o.MinPoolSize = 0
			}),
	)(rt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping mongo 'default'")
	assert.NoError(t, rt.Container.Build())
}

func TestMongoOptionDuplicate(t *testing.T) {
	err := mongodb.New(
		mongodb.WithClient("a", "mongodb://localhost"),
		mongodb.WithClient("a", "mongodb://localhost"),
	)(core.NewRuntime())
	assert.Error(t, err)
}

func TestMongoOptionWithoutClients(t *testing.T) {
	assert.NoError(t, mongodb.New()(core.NewRuntime()))
}
