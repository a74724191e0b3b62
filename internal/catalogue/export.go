package catalogue

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Export formats accepted by Write.
const (
	ExportJSON  = "json"
	ExportJSONL = "jsonl"
	ExportCSV   = "csv"
	ExportTSV   = "tsv"
)

// Write serializes the catalogue in insertion order.
func Write(w io.Writer, c *Catalogue, format string) error {
	switch format {
	case ExportJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(c.entries); err != nil {
			return fmt.Errorf("failed to encode catalogue: %w", err)
		}
		return nil

	case ExportJSONL:
		encoder := json.NewEncoder(w)
		for _, e := range c.entries {
			if err := encoder.Encode(e); err != nil {
				return fmt.Errorf("failed to encode entry %q: %w", e.Term, err)
			}
		}
		return nil

	case ExportCSV, ExportTSV:
		cw := csv.NewWriter(w)
		if format == ExportTSV {
			cw.Comma = '\t'
		}
		if err := cw.Write([]string{"term", "valence", "arousal", "dominance"}); err != nil {
			return err
		}
		for _, e := range c.entries {
			row := []string{e.Term, formatFloat(e.V), formatFloat(e.A), formatFloat(e.D)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write entry %q: %w", e.Term, err)
			}
		}
		cw.Flush()
		return cw.Error()

	default:
		return fmt.Errorf("unknown export format %q (want json, jsonl, csv or tsv)", format)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
