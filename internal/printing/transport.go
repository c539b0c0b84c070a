// Package printing resolves which thermal printer receives a document and
// ships the rendered text to it over ESC/POS.
package printing

import (
	"context"
	"errors"
)

// Target identifies a printer for the transport. Address is optional; when
// empty the transport resolves Name from its own table.
type Target struct {
	Name    string
	Address string
}

// SystemPrinter is a printer the transport can see on its own.
type SystemPrinter struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	Online    bool   `json:"online"`
}

type Status struct {
	Online  bool `json:"online"`
	PaperOK bool `json:"paper_ok"`
}

// Transport is the OS/hardware side of printing.
type Transport interface {
	ListSystemPrinters(ctx context.Context) ([]SystemPrinter, error)
	CheckStatus(ctx context.Context, t Target) (Status, error)
	Print(ctx context.Context, t Target, text string, cut bool) error
}

// ErrUnknownPrinter is returned for a Target the transport cannot reach.
var ErrUnknownPrinter = errors.New("printing: unknown printer")
