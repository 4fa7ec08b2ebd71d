package printer

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Printer sends raw ESC/POS data to a receipt printer.
type Printer interface {
	Print(data []byte) error
	Close() error
	IsConnected() bool
}

// Type names accepted in configuration.
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeNone    = "none"
)

// Config selects and parameterises a printer transport.
type Config struct {
	Type    string
	USBPath string
	Address string
	// Timeout bounds dialing and writing to a network printer.
	Timeout time.Duration
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (raw TCP, usually port 9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter creates a printer reachable at host:port.
func NewNetworkPrinter(address string, timeout time.Duration) Printer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &networkPrinter{address: address, timeout: timeout}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(2 * p.timeout))

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Null Printer ---

type nullPrinter struct{}

// NewNullPrinter creates a printer that discards everything.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print([]byte) error { return nil }
func (nullPrinter) Close() error       { return nil }
func (nullPrinter) IsConnected() bool  { return false }

// New creates the Printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case TypeUSB:
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(cfg.USBPath), nil
	case TypeNetwork:
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(cfg.Address, cfg.Timeout), nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", cfg.Type)
	}
}
