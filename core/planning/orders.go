package planning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadplan/core/model"
)

// orderFile accepts either a bare list of orders or an object wrapping it.
type orderFile struct {
	VehicleID string        `json:"vehicle_id" yaml:"vehicle_id"`
	Capacity  float64       `json:"capacity" yaml:"capacity"`
	Orders    []model.Order `json:"orders" yaml:"orders"`
}

// LoadOrders reads a request from a YAML or JSON file. The format is chosen
// by extension; a file without one is parsed as YAML and any other
// extension is rejected.
func LoadOrders(path string) (Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	req, err := DecodeOrders(f, format)
	if err != nil {
		return Request{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// DecodeOrders parses orders in the given format ("json", "yaml" or "yml").
func DecodeOrders(r io.Reader, format string) (Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Request{}, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Request{}, fmt.Errorf("%w: empty order file", ErrInvalidRequest)
	}
	var (
		file orderFile
		list []model.Order
	)
	switch format {
	case "json":
		if trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &list)
		} else {
			err = json.Unmarshal(trimmed, &file)
		}
	case "yaml", "yml", "":
		var node yaml.Node
		if err = yaml.Unmarshal(trimmed, &node); err == nil {
			if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
				err = node.Decode(&list)
			} else {
				err = node.Decode(&file)
			}
		}
	default:
		return Request{}, fmt.Errorf("unsupported order format %q", format)
	}
	if err != nil {
		return Request{}, fmt.Errorf("decode %s orders: %w", format, err)
	}
	if list != nil {
		file.Orders = list
	}
	for i := range file.Orders {
		if file.Orders[i].ID == "" {
			file.Orders[i].ID = fmt.Sprintf("order-%d", i+1)
		}
	}
	return Request{VehicleID: file.VehicleID, Capacity: file.Capacity, Orders: file.Orders}, nil
}
