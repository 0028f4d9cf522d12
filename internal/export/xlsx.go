package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"balanca/internal/history"
)

// Workbook monta uma planilha com uma aba por visão (Semanal, Mensal...).
func Workbook(views ...history.View) (*excelize.File, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("nenhuma tabela para exportar")
	}
	f := excelize.NewFile()
	for i, v := range views {
		sheet := v.Kind.Label()
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, sheet, v); err != nil {
			f.Close()
			return nil, fmt.Errorf("aba %s: %w", sheet, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, v history.View) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	header := make([]interface{}, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range v.Rows {
		row := make([]interface{}, len(r))
		for j, cell := range r {
			// célula ausente fica vazia na planilha
			if cell == nil {
				cell = ""
			}
			row[j] = cell
		}
		addr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(addr, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func SaveXLSX(path string, views ...history.View) error {
	f, err := Workbook(views...)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func WriteXLSX(w io.Writer, views ...history.View) error {
	f, err := Workbook(views...)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
