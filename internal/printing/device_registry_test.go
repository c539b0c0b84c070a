package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeviceRegistry_TTL(t *testing.T) {
	reg := NewMemoryDeviceRegistry(30 * time.Minute)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, "pc-1", []DevicePrinter{{Name: "Caixa", Online: true}}))

	got, err := reg.Lookup(ctx, "pc-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	reg.now = func() time.Time { return base.Add(31 * time.Minute) }
	got, err = reg.Lookup(ctx, "pc-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryDeviceRegistry_ReRegisterReplaces(t *testing.T) {
	reg := NewMemoryDeviceRegistry(time.Minute)
	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, "pc-1", []DevicePrinter{{Name: "A"}, {Name: "B"}}))
	require.NoError(t, reg.Register(ctx, "pc-1", []DevicePrinter{{Name: "C"}}))

	got, _ := reg.Lookup(ctx, "pc-1")
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Name)

	missing, err := reg.Lookup(ctx, "pc-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
