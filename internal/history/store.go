package history

import (
	"math"
	"strconv"
	"strings"

	"balanca/internal/model"
)

// Store persiste o histórico de cada tabela. Load de um histórico que ainda
// não existe devolve um Dataset vazio, sem erro.
type Store interface {
	Load(kind model.TableKind) (model.Dataset, error)
	Save(ds model.Dataset) error
}

func formatValor(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseStored lê números já gravados (ponto decimal). Vazio, NaN ou lixo viram ausentes.
func parseStored(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
