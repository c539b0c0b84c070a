package service_test

import (
	"context"
	"testing"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/printing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_PrefersRegisteredDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.prints.RegisterDevice(ctx, f.company.ID, dto.RegisterDeviceRequest{
		ComputerID: "caixa-01",
		Printers: []dto.DevicePrinterRequest{
			{Name: "Epson", Address: "10.0.0.9:9100", Online: true},
			{Name: "Bematech", Address: "10.0.0.7:9100", IsDefault: true, Online: true},
		},
	}))

	res := f.prints.Dispatch(ctx, f.company.ID, "caixa-01", "teste", true)

	assert.True(t, res.Success)
	assert.Equal(t, "Bematech", res.PrinterName)
	assert.Equal(t, printing.TierClientDevice, res.Tier)
}

func TestDispatch_DevicesAreScopedPerCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.addCompany(false)
	require.NoError(t, f.prints.RegisterDevice(ctx, other.ID, dto.RegisterDeviceRequest{
		ComputerID: "caixa-01",
		Printers:   []dto.DevicePrinterRequest{{Name: "Alheia", Address: "10.0.0.2:9100", Online: true}},
	}))

	res := f.prints.Dispatch(ctx, f.company.ID, "caixa-01", "teste", true)

	assert.True(t, res.Success)
	assert.Equal(t, "Balcao", res.PrinterName)
	assert.Equal(t, printing.TierSystem, res.Tier)
}

func TestDispatch_CompanyPrinterTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr := "192.168.0.50:9100"
	_, err := f.prints.CreatePrinter(ctx, f.company.ID, dto.CreatePrinterRequest{
		Name: "Cozinha", ConnectionType: "network", Address: &addr, IsDefault: true,
	})
	require.NoError(t, err)

	res := f.prints.Dispatch(ctx, f.company.ID, "", "pedido", false)

	assert.True(t, res.Success)
	assert.Equal(t, "Cozinha", res.PrinterName)
	assert.Equal(t, printing.TierCompany, res.Tier)
}

func TestDispatch_NoPrinter(t *testing.T) {
	f := newFixture(t)
	f.transport.system = nil

	res := f.prints.Dispatch(context.Background(), f.company.ID, "", "teste", true)

	assert.False(t, res.Success)
	require.NotNil(t, res.Details)
	assert.Equal(t, printing.ReasonNoPrinter, res.Details.Reason)
}

func TestCreatePrinter_DuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.CreatePrinterRequest{Name: "Balcao 2", ConnectionType: "usb"}
	_, err := f.prints.CreatePrinter(ctx, f.company.ID, req)
	require.NoError(t, err)

	_, err = f.prints.CreatePrinter(ctx, f.company.ID, req)

	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestSetDefaultPrinter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.prints.CreatePrinter(ctx, f.company.ID, dto.CreatePrinterRequest{Name: "A", ConnectionType: "usb", IsDefault: true})
	require.NoError(t, err)
	b, err := f.prints.CreatePrinter(ctx, f.company.ID, dto.CreatePrinterRequest{Name: "B", ConnectionType: "usb"})
	require.NoError(t, err)

	require.NoError(t, f.prints.SetDefault(ctx, f.company.ID, mustUUID(t, b.ID)))

	list, err := f.prints.ListPrinters(ctx, f.company.ID)
	require.NoError(t, err)
	defaults := map[string]bool{}
	for _, p := range list {
		defaults[p.ID] = p.IsDefault
	}
	assert.False(t, defaults[a.ID])
	assert.True(t, defaults[b.ID])

	err = f.prints.SetDefault(ctx, f.store.addCompany(false).ID, mustUUID(t, a.ID))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestPrinterStatus(t *testing.T) {
	f := newFixture(t)
	f.transport.status = printing.Status{Online: true, PaperOK: false}

	st, err := f.prints.Status(context.Background(), f.company.ID, "Balcao")
	require.NoError(t, err)
	assert.True(t, st.Online)
	assert.False(t, st.PaperOK)

	_, err = f.prints.Status(context.Background(), f.company.ID, "Inexistente")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
