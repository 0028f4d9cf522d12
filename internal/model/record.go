package model

import "time"

// TimestampLayout é o formato do carimbo de captura gravado na coluna Data.
const TimestampLayout = "2006-01-02 15:04:05"

// TableBlock é uma tabela localizada na página, ainda com células em texto.
type TableBlock struct {
	Kind    TableKind
	Headers []string
	Rows    [][]string
}

// Campo guarda uma coluna que não faz parte do conjunto canônico.
// Valor só é preenchido quando o nome da coluna contém "Valor".
type Campo struct {
	Nome  string
	Texto string
	Valor *float64
}

// Record é uma linha normalizada. Ponteiro nil marca valor ausente.
type Record struct {
	Periodo     string
	Exportacoes *float64
	Importacoes *float64
	Data        string
	Extras      []Campo
}

// CapturedAt interpreta a coluna Data. ok=false quando o valor é inválido.
func (r Record) CapturedAt() (time.Time, bool) {
	return ParseTimestamp(r.Data)
}

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp aceita o formato gravado pelo normalizador e as variações
// que aparecem em arquivos editados à mão.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Float é um atalho para montar valores presentes.
func Float(v float64) *float64 {
	return &v
}
