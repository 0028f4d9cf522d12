package normalizer

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"balanca/internal/model"
)

// Nomes das colunas como aparecem na página
const (
	headerExportacoes = "Exportações"
	headerImportacoes = "Importações"
)

var nonNumeric = regexp.MustCompile(`[^\d,.]`)

// Normalize monta um Record por linha, renomeando as colunas para os nomes
// canônicos e convertendo as colunas de "Valor" para número. Todas as linhas
// do lote recebem o mesmo carimbo capturedAt.
func Normalize(headers []string, rows [][]string, kind model.TableKind, capturedAt time.Time) ([]model.Record, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: tabela %s sem cabeçalho", model.ErrStructure, kind.Label())
	}

	names := canonicalNames(headers, kind)
	if err := requireColumns(names, kind); err != nil {
		return nil, err
	}

	stamp := capturedAt.Format(model.TimestampLayout)
	records := make([]model.Record, 0, len(rows))
	for n, row := range rows {
		// sem chave de período a linha não tem como ser deduplicada
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			log.Printf("[Normalizer] %s: linha %d ignorada, período vazio", kind.Label(), n+1)
			continue
		}
		rec := model.Record{Data: stamp}
		for i, name := range names {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			switch {
			case i == 0:
				rec.Periodo = strings.TrimSpace(cell)
			case name == model.ColunaExportacoes:
				rec.Exportacoes = ParseValor(cell)
			case name == model.ColunaImportacoes:
				rec.Importacoes = ParseValor(cell)
			default:
				c := model.Campo{Nome: name, Texto: cell}
				if isValorColumn(name) {
					c.Valor = ParseValor(cell)
				}
				rec.Extras = append(rec.Extras, c)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func canonicalNames(headers []string, kind model.TableKind) []string {
	names := make([]string, len(headers))
	for i, h := range headers {
		switch {
		case i == 0:
			names[i] = kind.PeriodColumn()
		case h == headerExportacoes:
			names[i] = model.ColunaExportacoes
		case h == headerImportacoes:
			names[i] = model.ColunaImportacoes
		default:
			names[i] = h
		}
	}
	return names
}

func requireColumns(names []string, kind model.TableKind) error {
	var missing []string
	for _, want := range []string{model.ColunaExportacoes, model.ColunaImportacoes} {
		if !contains(names, want) {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: tabela %s sem as colunas %s", model.ErrStructure, kind.Label(), strings.Join(missing, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isValorColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "valor")
}

// ParseValor converte números no formato brasileiro ("1.234,56", "US$ 500,00")
// para float. Retorna nil quando não há número válido.
func ParseValor(s string) *float64 {
	s = nonNumeric.ReplaceAllString(s, "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
