package printing

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	name      string
	address   string
	isDefault bool
}

func (e endpoint) isDevice() bool { return strings.HasPrefix(e.address, "/") }

// SystemTransport reaches printers over TCP (raw port 9100) or a USB device
// file such as /dev/usb/lp0. Its own printer table comes from SYSTEM_PRINTERS.
type SystemTransport struct {
	printers    []endpoint
	dialTimeout time.Duration
}

var _ Transport = (*SystemTransport)(nil)

// ParseSystemPrinters reads "Name=address[,default];Other=address".
func ParseSystemPrinters(raw string) ([]SystemPrinter, map[string]string, error) {
	var list []SystemPrinter
	addrs := make(map[string]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rest, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(rest) == "" {
			return nil, nil, fmt.Errorf("printing: invalid printer entry %q", entry)
		}
		addr, flag, _ := strings.Cut(rest, ",")
		name = strings.TrimSpace(name)
		list = append(list, SystemPrinter{Name: name, IsDefault: strings.TrimSpace(flag) == "default"})
		addrs[name] = strings.TrimSpace(addr)
	}
	return list, addrs, nil
}

func NewSystemTransport(raw string, dialTimeout time.Duration) (*SystemTransport, error) {
	list, addrs, err := ParseSystemPrinters(raw)
	if err != nil {
		return nil, err
	}
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	t := &SystemTransport{dialTimeout: dialTimeout}
	for _, p := range list {
		t.printers = append(t.printers, endpoint{name: p.Name, address: addrs[p.Name], isDefault: p.IsDefault})
	}
	return t, nil
}

func (t *SystemTransport) ListSystemPrinters(ctx context.Context) ([]SystemPrinter, error) {
	out := make([]SystemPrinter, 0, len(t.printers))
	for _, e := range t.printers {
		out = append(out, SystemPrinter{Name: e.name, IsDefault: e.isDefault, Online: t.reachable(ctx, e)})
	}
	return out, nil
}

func (t *SystemTransport) CheckStatus(ctx context.Context, target Target) (Status, error) {
	e, err := t.resolve(target)
	if err != nil {
		return Status{}, err
	}
	if e.isDevice() {
		return Status{Online: t.reachable(ctx, e), PaperOK: true}, nil
	}

	conn, err := t.dial(ctx, e.address)
	if err != nil {
		return Status{Online: false}, nil
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(t.dialTimeout))
	if _, err := conn.Write(statusRequest); err != nil {
		return Status{Online: false}, nil
	}
	reply := make([]byte, 1)
	if _, err := conn.Read(reply); err != nil {
		// Many printers never answer DLE EOT; reachable means usable.
		return Status{Online: true, PaperOK: true}, nil
	}
	return Status{Online: true, PaperOK: reply[0]&paperEndMask == 0}, nil
}

func (t *SystemTransport) Print(ctx context.Context, target Target, text string, cut bool) error {
	e, err := t.resolve(target)
	if err != nil {
		return err
	}
	data, err := Encode(text, cut)
	if err != nil {
		return fmt.Errorf("printing: encode: %w", err)
	}

	if e.isDevice() {
		f, err := os.OpenFile(e.address, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("printing: open device %s: %w", e.address, err)
		}
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("printing: write device %s: %w", e.address, err)
		}
		return nil
	}

	conn, err := t.dial(ctx, e.address)
	if err != nil {
		return fmt.Errorf("printing: connect %s: %w", e.address, err)
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printing: write %s: %w", e.address, err)
	}
	return nil
}

func (t *SystemTransport) resolve(target Target) (endpoint, error) {
	if target.Address != "" {
		return endpoint{name: target.Name, address: target.Address}, nil
	}
	for _, e := range t.printers {
		if e.name == target.Name {
			return e, nil
		}
	}
	return endpoint{}, fmt.Errorf("%w: %s", ErrUnknownPrinter, target.Name)
}

func (t *SystemTransport) reachable(ctx context.Context, e endpoint) bool {
	if e.isDevice() {
		_, err := os.Stat(e.address)
		return err == nil
	}
	conn, err := t.dial(ctx, e.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (t *SystemTransport) dial(ctx context.Context, address string) (net.Conn, error) {
	d := net.Dialer{Timeout: t.dialTimeout}
	return d.DialContext(ctx, "tcp", address)
}
