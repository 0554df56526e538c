// Package export renders computed plans for dispatch desks and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/loadplan/core/model"
)

// Formats lists the names accepted by Write.
var Formats = []string{"json", "csv", "html"}

var csvHeader = []string{"plan_id", "vehicle_id", "order_id", "client", "province", "date", "weight_kg"}

// Write renders plans to w in the named format.
func Write(w io.Writer, format string, plans ...model.Plan) error {
	switch format {
	case "", "json":
		return WriteJSON(w, plans...)
	case "csv":
		return WriteCSV(w, plans...)
	case "html":
		return WriteHTML(w, plans...)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteJSON writes the plans to w as indented JSON. A single plan is
// written as an object, several as an array.
func WriteJSON(w io.Writer, plans ...model.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(plans) == 1 {
		return enc.Encode(plans[0])
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	return enc.Encode(plans)
}

// WriteCSV writes one row per loaded order.
func WriteCSV(w io.Writer, plans ...model.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range plans {
		for _, o := range p.Selected {
			date := ""
			if !o.Date.IsZero() {
				date = o.Date.Format(time.DateOnly)
			}
			rec := []string{
				p.ID,
				p.VehicleID,
				o.ID,
				o.Client,
				o.Province,
				date,
				strconv.FormatFloat(o.WeightKg, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
