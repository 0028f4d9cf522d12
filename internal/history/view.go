package history

import "balanca/internal/model"

// View é o histórico em forma de tabela para a camada de apresentação,
// com a coluna derivada de variação percentual.
type View struct {
	Kind    model.TableKind `json:"tipo"`
	Columns []string        `json:"colunas"`
	Rows    [][]any         `json:"linhas"`
}

// Point é um ponto do gráfico de exportações.
type Point struct {
	Periodo     string   `json:"periodo"`
	Exportacoes *float64 `json:"exportacoes"`
}

func NewView(ds model.Dataset) View {
	period := ds.Kind.PeriodColumn()
	v := View{
		Kind:    ds.Kind,
		Columns: []string{period, model.ColunaExportacoes, model.ColunaImportacoes, model.ColunaVariacao, model.ColunaData},
		Rows:    make([][]any, 0, ds.Len()),
	}
	change := PercentChange(ds)
	for i := range ds.Records {
		v.Rows = append(v.Rows, []any{
			ds.Value(i, period),
			ds.Value(i, model.ColunaExportacoes),
			ds.Value(i, model.ColunaImportacoes),
			floatOrNil(change[i]),
			ds.Value(i, model.ColunaData),
		})
	}
	return v
}

// PercentChange calcula a variação % de EXPORTAÇÕES Valor linha a linha, na
// ordem do histórico. É nil na primeira linha, quando algum dos valores está
// ausente e quando o valor anterior é zero.
func PercentChange(ds model.Dataset) []*float64 {
	out := make([]*float64, len(ds.Records))
	for i := 1; i < len(ds.Records); i++ {
		prev, cur := ds.Records[i-1].Exportacoes, ds.Records[i].Exportacoes
		if prev == nil || cur == nil || *prev == 0 {
			continue
		}
		out[i] = model.Float((*cur - *prev) / *prev * 100)
	}
	return out
}

// Series devolve a série de exportações por período, para o gráfico de linha.
func Series(ds model.Dataset) []Point {
	pts := make([]Point, 0, ds.Len())
	for _, r := range ds.Records {
		pts = append(pts, Point{Periodo: r.Periodo, Exportacoes: r.Exportacoes})
	}
	return pts
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
