package dto

type DevicePrinterRequest struct {
	Name      string `json:"name"       validate:"required,max=120"`
	Address   string `json:"address"    validate:"omitempty,max=255"`
	IsDefault bool   `json:"is_default"`
	Online    bool   `json:"online"`
}

type RegisterDeviceRequest struct {
	ComputerID string                 `json:"computer_id" validate:"required,max=100"`
	Printers   []DevicePrinterRequest `json:"printers"    validate:"required,dive"`
}

type CreatePrinterRequest struct {
	Name           string  `json:"name"            validate:"required,max=120"`
	ConnectionType string  `json:"connection_type" validate:"required,oneof=network usb"`
	Address        *string `json:"address"         validate:"omitempty,max=255"`
	PaperWidth     int     `json:"paper_width"     validate:"omitempty,oneof=32 40"`
	IsDefault      bool    `json:"is_default"`
}

type DispatchPrintRequest struct {
	Content    string `json:"content"     validate:"required"`
	ComputerID string `json:"computer_id" validate:"omitempty,max=100"`
	Cut        *bool  `json:"cut"`
}

type PrinterResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ConnectionType  string  `json:"connection_type"`
	Address         *string `json:"address,omitempty"`
	PaperWidth      int     `json:"paper_width"`
	IsDefault       bool    `json:"is_default"`
	IsConnected     bool    `json:"is_connected"`
	LastStatusCheck *string `json:"last_status_check,omitempty"`
}

type PrinterStatusResponse struct {
	Name    string `json:"name"`
	Online  bool   `json:"online"`
	PaperOK bool   `json:"paper_ok"`
}
