package model

// Dataset é o histórico de uma tabela, ordenado pela captura.
type Dataset struct {
	Kind    TableKind
	Records []Record
}

func NewDataset(kind TableKind) Dataset {
	return Dataset{Kind: kind, Records: []Record{}}
}

func (d Dataset) Len() int {
	return len(d.Records)
}

func (d Dataset) Columns() []string {
	return d.Kind.Columns()
}

// Value devolve a célula (row, col) pelo nome da coluna canônica.
// Valores numéricos ausentes voltam como nil.
func (d Dataset) Value(row int, col string) any {
	if row < 0 || row >= len(d.Records) {
		return nil
	}
	r := d.Records[row]
	switch col {
	case d.Kind.PeriodColumn():
		return r.Periodo
	case ColunaExportacoes:
		return floatOrNil(r.Exportacoes)
	case ColunaImportacoes:
		return floatOrNil(r.Importacoes)
	case ColunaData:
		return r.Data
	}
	for _, c := range r.Extras {
		if c.Nome == col {
			if c.Valor != nil {
				return *c.Valor
			}
			return c.Texto
		}
	}
	return nil
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
