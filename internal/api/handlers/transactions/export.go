package transactions

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"finance_io/internal/api/handlers"
	"finance_io/internal/models"
	"finance_io/pkg/utils"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const exportSheet = "Transações"

var exportHeader = []string{"id", "date", "description", "category", "type", "amount"}

type exportRow struct {
	ID          int    `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Type        string `json:"type" yaml:"type"`
	Amount      string `json:"amount" yaml:"amount"`
}

func toRows(transactions []models.Transaction) []exportRow {
	rows := make([]exportRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, exportRow{
			ID:          t.ID,
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Category:    t.Category,
			Type:        string(t.Type),
			Amount:      t.Amount.StringFixed(2),
		})
	}
	return rows
}

type exporter struct {
	contentType string
	write       func(io.Writer, []exportRow) error
}

var exporters = map[string]exporter{
	"csv":  {"text/csv; charset=utf-8", writeCSV},
	"json": {"application/json", writeJSON},
	"yaml": {"application/yaml", writeYAML},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", writeXLSX},
}

func writeCSV(w io.Writer, rows []exportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(r.ID), r.Date, r.Description, r.Category, r.Type, r.Amount}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, rows []exportRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeYAML(w io.Writer, rows []exportRow) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(rows)
}

func writeXLSX(w io.Writer, rows []exportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		amount, _ := strconv.ParseFloat(r.Amount, 64)
		values := []interface{}{r.ID, r.Date, r.Description, r.Category, r.Type, amount}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// Export streams every transaction matching the filters as csv, json, yaml
// or xlsx (?format=, csv by default).
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if !handlers.AllowMethods(w, r, http.MethodGet) {
		return
	}

	userID, ok := handlers.UserID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	exp, ok := exporters[format]
	if !ok {
		utils.WriteError(w, "format must be csv, json, yaml or xlsx", http.StatusBadRequest)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlers.DBTimeout)
	defer cancel()

	transactions, err := h.Store.ListTransactions(ctx, userID, filter)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions for export: %v", err)
		utils.WriteError(w, "error exporting transactions", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("transactions-%s.%s", time.Now().Format("20060102"), format)
	w.Header().Set("Content-Type", exp.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exp.write(w, toRows(transactions)); err != nil {
		utils.Logger.Errorf("error writing %s export: %v", format, err)
	}
}
