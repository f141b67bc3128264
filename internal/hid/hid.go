// Package hid finds and opens DualSense controllers through hidapi.
package hid

import (
	"errors"
	"fmt"
	"log/slog"

	gohid "github.com/GeertJohan/go.hid"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
)

// Info describes one enumerated controller interface.
type Info struct {
	Path         string              `json:"path"`
	VendorID     uint16              `json:"vendorId"`
	ProductID    uint16              `json:"productId"`
	Serial       string              `json:"serial"`
	Manufacturer string              `json:"manufacturer"`
	Product      string              `json:"product"`
	Interface    int                 `json:"interface"`
	Transport    dualsense.Transport `json:"-"`
}

// Edge reports whether the controller is a DualSense Edge.
func (i Info) Edge() bool { return i.ProductID == dualsense.ProductIDEdge }

// Matches reports whether vid/pid belong to a supported controller.
func Matches(vid, pid uint16) bool {
	return vid == dualsense.VendorID && (pid == dualsense.ProductID || pid == dualsense.ProductIDEdge)
}

// Enumerator lists HID devices; the default is hidapi.
type Enumerator func(vid, pid uint16) ([]Info, error)

// Opener opens a device path.
type Opener func(path string) (dualsense.Device, error)

// Backend bundles the enumeration and open primitives.
type Backend struct {
	enumerate Enumerator
	open      Opener
}

func NewBackend(e Enumerator, o Opener) Backend {
	return Backend{enumerate: e, open: o}
}

// Default is the hidapi backend.
var Default = NewBackend(enumerateHID, openHID)

func enumerateHID(vid, pid uint16) ([]Info, error) {
	list, err := gohid.Enumerate(vid, pid)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(list))
	for _, d := range list {
		out = append(out, Info{
			Path:         d.Path,
			VendorID:     d.VendorId,
			ProductID:    d.ProductId,
			Serial:       d.SerialNumber,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interface:    d.InterfaceNumber,
			Transport:    dualsense.TransportFromInterface(d.InterfaceNumber),
		})
	}
	return out, nil
}

func openHID(path string) (dualsense.Device, error) {
	d, err := gohid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns every connected DualSense and DualSense Edge.
func (b Backend) List() ([]Info, error) {
	var out []Info
	for _, pid := range []uint16{dualsense.ProductID, dualsense.ProductIDEdge} {
		found, err := b.enumerate(dualsense.VendorID, pid)
		if err != nil {
			return nil, &dualsense.Error{Op: "enumerate", Err: err}
		}
		for _, f := range found {
			if !Matches(f.VendorID, f.ProductID) {
				continue
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// Open connects to the controller described by info.
func (b Backend) Open(info Info, opts ...dualsense.Option) (*dualsense.DualSense, error) {
	if !Matches(info.VendorID, info.ProductID) {
		return nil, fmt.Errorf("%04x:%04x: %w", info.VendorID, info.ProductID, dualsense.ErrNotFound)
	}
	dev, err := b.open(info.Path)
	if err != nil {
		return nil, &dualsense.Error{Op: "open", Err: err}
	}
	return dualsense.New(dev, info.Transport, opts...), nil
}

// Connect opens the first controller found. serial, when set, selects a
// specific controller.
func (b Backend) Connect(logger *slog.Logger, serial string, opts ...dualsense.Option) (*dualsense.DualSense, error) {
	infos, err := b.List()
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, info := range infos {
		if serial != "" && info.Serial != serial {
			continue
		}
		ds, err := b.Open(info, opts...)
		if err != nil {
			logger.Debug("failed to open controller", "path", info.Path, "error", err)
			lastErr = err
			continue
		}
		logger.Info("Connected to DualSense",
			"transport", info.Transport,
			"product", info.Product,
			"serial", info.Serial,
			"edge", info.Edge())
		return ds, nil
	}
	if lastErr != nil {
		return nil, errors.Join(dualsense.ErrNotFound, lastErr)
	}
	return nil, dualsense.ErrNotFound
}
