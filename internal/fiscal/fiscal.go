// Package fiscal issues NFC-e documents for sales, either against the
// fiscal gateway or through a local mock, and reports the result as a tagged
// Outcome instead of an error.
package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode selects the issuer wired into the Facade.
const (
	ModeMock    = "mock"
	ModeGateway = "gateway"
)

// Request carries everything needed to emit one NFC-e.
type Request struct {
	CompanyID     uuid.UUID
	CompanyCNPJ   string
	StateCode     string // IBGE UF code
	SaleID        uuid.UUID
	Series        int
	Number        int64
	Total         decimal.Decimal
	ClientCPFCNPJ string
	EmittedAt     time.Time
	Items         []Item
	Payments      []Payment
}

type Item struct {
	ProductID   uuid.UUID
	Description string
	NCM         string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type Payment struct {
	Method string
	Amount decimal.Decimal
}

// Authorization is what an issuer returns for an accepted document.
type Authorization struct {
	DocumentNumber int64
	Series         int
	AccessKey      string
	Protocol       string
	Status         string
	EmissionDate   time.Time
	XML            string
	QRCodeURL      string
}

// ErrRejected marks a definitive refusal by the authority. Rejected documents
// are not retried.
var ErrRejected = errors.New("fiscal: document rejected")

// Issuer talks to whatever authority emits documents.
type Issuer interface {
	Issue(ctx context.Context, req Request) (*Authorization, error)
	Cancel(ctx context.Context, accessKey, protocol, reason string) error
}

// OutcomeKind tags how an issuance ended.
type OutcomeKind int

const (
	Issued OutcomeKind = iota + 1
	Mocked
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Issued:
		return "issued"
	case Mocked:
		return "mocked"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of Facade.Issue. Authorization is set for Issued and
// Mocked; Err is set for Failed.
type Outcome struct {
	Kind          OutcomeKind
	Authorization *Authorization
	Err           error
}

// HasFiscalValue reports whether a DANFE NFC-e can be printed for the outcome.
func (o Outcome) HasFiscalValue() bool { return o.Kind == Issued }
