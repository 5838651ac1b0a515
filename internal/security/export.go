package security

import (
	"bufio"
	"encoding/csv"
	"io"
	"time"
)

var csvHeader = []string{"id", "timestamp", "user", "action", "details", "risk_level", "state", "authorized_by", "authorized_at", "justification"}

// WriteCSV renders events as CSV, one row per event after the header.
func WriteCSV(w io.Writer, events []Event) error {
	buf := bufio.NewWriter(w)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.User,
			e.Action,
			e.Details,
			e.Risk.Label(),
			string(e.State()),
			"",
			"",
			"",
		}
		if info := e.Authorization; info != nil {
			row[7] = info.AuthorizedBy
			row[8] = info.Timestamp.Format(time.RFC3339)
			row[9] = info.Justification
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
