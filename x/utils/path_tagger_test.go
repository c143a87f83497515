package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/chantest"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestPathTagger(t *testing.T) {
	ctx := context.Background()
	db := store.MemStore()
	tx := &chantest.Tx{Msg: &chantest.Msg{RoutePath: "paychan/fund"}}

	h := &chantest.Handler{
		DeliverResult: unichan.DeliverResult{Tags: []unichan.Tag{{Key: "action", Value: "opened"}}},
	}
	res, err := NewPathTagger().Deliver(ctx, db, tx, h)
	require.NoError(t, err)
	assert.Equal(t, []unichan.Tag{
		{Key: "action", Value: "opened"},
		{Key: PathKey, Value: "paychan/fund"},
	}, res.Tags)

	h = &chantest.Handler{DeliverErr: errors.ErrUnauthorized}
	_, err = NewPathTagger().Deliver(ctx, db, tx, h)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = NewPathTagger().Deliver(ctx, db, &chantest.Tx{Err: errors.ErrMsg}, h)
	assert.True(t, errors.ErrMsg.Is(err))
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestLoggingPassesResults(t *testing.T) {
	ctx := chantest.Context(t, nil)
	db := store.MemStore()
	tx := &chantest.Tx{Msg: &chantest.Msg{RoutePath: "paychan/fund"}}

	h := &chantest.Handler{
		CheckResult:   unichan.CheckResult{Log: "checked", GasAllocated: 5},
		DeliverResult: unichan.DeliverResult{Log: "done"},
	}
	cres, err := NewLogging().Check(ctx, db, tx, h)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cres.GasAllocated)

	dres, err := NewLogging().Deliver(ctx, db, tx, h)
	require.NoError(t, err)
	assert.Equal(t, "done", dres.Log)

	h = &chantest.Handler{DeliverErr: errors.ErrState}
	_, err = NewLogging().Deliver(ctx, db, tx, h)
	assert.True(t, errors.ErrState.Is(err))
}

func TestLoggingIncludesChainID(t *testing.T) {
	var buf bytes.Buffer
	ctx := unichan.WithLogger(context.Background(), log.NewTMLogger(&buf))
	ctx = unichan.WithChainID(ctx, "test-chain")
	tx := &chantest.Tx{Msg: &chantest.Msg{RoutePath: "paychan/fund"}}

	_, err := NewLogging().Deliver(ctx, store.MemStore(), tx, &chantest.Handler{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "chain_id=test-chain")
	assert.Contains(t, buf.String(), "path=paychan/fund")
}
