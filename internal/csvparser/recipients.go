package csvparser

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"PulseCast/internal/models"
)

// ParseRecipients parses a recipient CSV from an io.Reader. The CSV must
// contain a header row with an "id" column (case-insensitive); optional
// "is_active" and "is_banned" columns override the defaults (active, not
// banned).
//
// maxRows limits how many data rows are parsed (excluding header).
func ParseRecipients(r io.Reader, maxRows int) ([]models.Recipient, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Malformed rows are skipped rather than failing the whole import.
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, errors.New("csv header row is empty")
	}

	idIdx, activeIdx, bannedIdx := -1, -1, -1
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id":
			idIdx = i
		case "is_active":
			activeIdx = i
		case "is_banned":
			bannedIdx = i
		}
	}
	if idIdx == -1 {
		return nil, errors.New("csv must contain an id column")
	}

	if maxRows <= 0 {
		maxRows = 10000
	}

	recipients := make([]models.Recipient, 0)
	for len(recipients) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}

		id := strings.TrimSpace(record[idIdx])
		if id == "" {
			continue
		}

		rec := models.Recipient{ID: id, IsActive: true}
		if activeIdx != -1 {
			if v, err := strconv.ParseBool(strings.TrimSpace(record[activeIdx])); err == nil {
				rec.IsActive = v
			}
		}
		if bannedIdx != -1 {
			if v, err := strconv.ParseBool(strings.TrimSpace(record[bannedIdx])); err == nil {
				rec.IsBanned = v
			}
		}

		recipients = append(recipients, rec)
	}

	if len(recipients) == 0 {
		return nil, errors.New("csv must contain at least one data row")
	}

	return recipients, nil
}
