/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/memstore"
	"github.com/suparena/memstore/config"
	"github.com/suparena/memstore/datastore/ddb"
	"github.com/suparena/memstore/datastore/memory"
	"github.com/suparena/memstore/datastore/redis"
	"github.com/suparena/memstore/datastore/testmodels"
	"github.com/suparena/memstore/errors"
)

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.Default(), testmodels.NewRegistry(), nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Adapter{}, b.Adapter)
	assert.NoError(t, b.Close(ctx))
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test"

	reg := testmodels.NewRegistry()
	b, err := Open(ctx, cfg, reg, nil)
	require.NoError(t, err)
	assert.IsType(t, &redis.Adapter{}, b.Adapter)

	tmpl := memstore.New(b, reg)
	_, err = memstore.Create(ctx, tmpl, testmodels.Person{ID: "p1", Name: "Ada"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:people"))

	require.NoError(t, b.Close(ctx))
}

func TestOpenRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = addr

	_, err = Open(context.Background(), cfg, testmodels.NewRegistry(), nil)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestOpenDynamoDB(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendDynamoDB
	cfg.DynamoDB.TableName = "memstore"
	cfg.DynamoDB.Region = "us-east-1"
	cfg.DynamoDB.Endpoint = "http://localhost:8000"
	cfg.DynamoDB.AccessKeyID = "local"
	cfg.DynamoDB.SecretAccessKey = "local"

	b, err := Open(context.Background(), cfg, testmodels.NewRegistry(), nil)
	require.NoError(t, err)
	assert.IsType(t, &ddb.Adapter{}, b.Adapter)
	assert.Equal(t, config.BackendDynamoDB, b.Kind)
}

func TestOpenInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "cassandra"
	_, err := Open(context.Background(), cfg, testmodels.NewRegistry(), nil)
	assert.True(t, errors.IsValidationError(err))
}
