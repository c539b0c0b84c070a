package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vendapos/internal/fiscal"
)

// fiscalIssuePayload is the body POSTed to the gateway's /nfce endpoint.
// The gateway owns the SEFAZ protocol (XML signing, webservice calls).
type fiscalIssuePayload struct {
	CNPJ          string               `json:"cnpj"`
	UF            string               `json:"uf"`
	Series        int                  `json:"serie"`
	Number        int64                `json:"numero"`
	Reference     string               `json:"referencia"`
	EmittedAt     time.Time            `json:"data_emissao"`
	Total         string               `json:"valor_total"`
	ClientCPFCNPJ string               `json:"cpf_cnpj_consumidor,omitempty"`
	Items         []fiscalItemPayload  `json:"itens"`
	Payments      []fiscalPaymentEntry `json:"pagamentos"`
}

type fiscalItemPayload struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
	NCM         string `json:"ncm,omitempty"`
	Quantity    int    `json:"quantidade"`
	UnitPrice   string `json:"valor_unitario"`
	Total       string `json:"valor_total"`
}

type fiscalPaymentEntry struct {
	Method string `json:"forma"`
	Amount string `json:"valor"`
}

// fiscalIssueResponse is what the gateway answers for an authorized document.
type fiscalIssueResponse struct {
	Status       string    `json:"status"`
	Number       int64     `json:"numero"`
	Series       int       `json:"serie"`
	AccessKey    string    `json:"chave_acesso"`
	Protocol     string    `json:"protocolo"`
	EmissionDate time.Time `json:"data_emissao"`
	XML          string    `json:"xml"`
	QRCodeURL    string    `json:"url_qrcode"`
	Message      string    `json:"mensagem"`
}

// FiscalGatewayClient implements fiscal.Issuer over the gateway's HTTP API.
type FiscalGatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ fiscal.Issuer = (*FiscalGatewayClient)(nil)

func NewFiscalGatewayClient(baseURL string, timeout time.Duration) *FiscalGatewayClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FiscalGatewayClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Issue asks the gateway to authorize a document. Rejections come back as errors.
func (c *FiscalGatewayClient) Issue(ctx context.Context, req fiscal.Request) (*fiscal.Authorization, error) {
	payload := fiscalIssuePayload{
		CNPJ:          req.CompanyCNPJ,
		UF:            req.StateCode,
		Series:        req.Series,
		Number:        req.Number,
		Reference:     req.SaleID.String(),
		EmittedAt:     req.EmittedAt,
		Total:         req.Total.StringFixed(2),
		ClientCPFCNPJ: req.ClientCPFCNPJ,
	}
	for _, it := range req.Items {
		payload.Items = append(payload.Items, fiscalItemPayload{
			Code:        it.ProductID.String(),
			Description: it.Description,
			NCM:         it.NCM,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Total:       it.Total.StringFixed(2),
		})
	}
	for _, p := range req.Payments {
		payload.Payments = append(payload.Payments, fiscalPaymentEntry{Method: p.Method, Amount: p.Amount.StringFixed(2)})
	}

	var result fiscalIssueResponse
	if err := c.post(ctx, "/nfce", payload, &result); err != nil {
		return nil, err
	}
	switch result.Status {
	case "Autorizada":
	case "Rejeitada":
		return nil, fmt.Errorf("fiscal gateway: %w: %s", fiscal.ErrRejected, result.Message)
	default:
		return nil, fmt.Errorf("fiscal gateway: document %s: %s", result.Status, result.Message)
	}
	return &fiscal.Authorization{
		DocumentNumber: result.Number,
		Series:         result.Series,
		AccessKey:      result.AccessKey,
		Protocol:       result.Protocol,
		Status:         result.Status,
		EmissionDate:   result.EmissionDate,
		XML:            result.XML,
		QRCodeURL:      result.QRCodeURL,
	}, nil
}

// Cancel asks the gateway to cancel an authorized document.
func (c *FiscalGatewayClient) Cancel(ctx context.Context, accessKey, protocol, reason string) error {
	body := map[string]string{"protocolo": protocol, "justificativa": reason}
	return c.post(ctx, "/nfce/"+accessKey+"/cancelamento", body, nil)
}

func (c *FiscalGatewayClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("fiscal gateway: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fiscal gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fiscal gateway: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fiscal gateway: returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fiscal gateway: decode response: %w", err)
	}
	return nil
}
