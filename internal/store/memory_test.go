package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore(Events)
	ctx := context.Background()

	in := []record{{ID: "1", Count: 1}}
	require.NoError(t, s.Update(ctx, Events, func(tx Txn) error {
		return tx.Save(in)
	}))

	var out []record
	require.NoError(t, s.Load(ctx, Events, &out))
	assert.Equal(t, in, out)
}

func TestMemStoreCorruptDocServesEmpty(t *testing.T) {
	s := NewMemStore(Events)
	s.Seed(Events, []byte("{broken"))

	var out []record
	require.NoError(t, s.Load(context.Background(), Events, &out))
	assert.Empty(t, out)
}

func TestMemStoreUnknownCollection(t *testing.T) {
	s := NewMemStore(Events)
	var out []record
	assert.ErrorIs(t, s.Load(context.Background(), Users, &out), ErrUnknownCollection)
	assert.ErrorIs(t, s.Update(context.Background(), Users, func(tx Txn) error { return nil }), ErrUnknownCollection)
}
