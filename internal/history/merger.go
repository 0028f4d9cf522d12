package history

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"balanca/internal/model"
)

// Merger junta o lote novo ao histórico persistido. Quem chama garante um
// único escritor por par de históricos.
type Merger struct {
	Store Store
}

// Merge anexa incoming ao histórico de kind, descarta linhas com Data
// inválida, deduplica pelo período mantendo a captura mais recente, grava e
// devolve o que foi lido de volta do armazenamento.
func (m *Merger) Merge(kind model.TableKind, incoming []model.Record) (model.Dataset, error) {
	existing, err := m.Store.Load(kind)
	if err != nil {
		return model.Dataset{}, err
	}

	merged := model.Dataset{Kind: kind, Records: Reconcile(existing.Records, incoming)}
	if dropped := len(existing.Records) + len(incoming) - len(merged.Records); dropped > 0 {
		log.Printf("[History] %s: %d linhas existentes + %d novas -> %d (descartadas %d)",
			kind.Label(), len(existing.Records), len(incoming), len(merged.Records), dropped)
	}

	if err := m.Store.Save(merged); err != nil {
		return model.Dataset{}, fmt.Errorf("erro ao salvar histórico %s: %w", kind, err)
	}
	return m.Store.Load(kind)
}

// Reconcile concatena existing e incoming (nessa ordem), remove linhas com
// Data inválida ou período vazio, ordena por Data crescente e mantém apenas a última linha de
// cada período.
func Reconcile(existing, incoming []model.Record) []model.Record {
	type stamped struct {
		rec model.Record
		at  time.Time
	}

	all := make([]stamped, 0, len(existing)+len(incoming))
	for _, batch := range [][]model.Record{existing, incoming} {
		for _, r := range batch {
			if strings.TrimSpace(r.Periodo) == "" {
				log.Printf("[History] Linha descartada: período vazio (Data %q)", r.Data)
				continue
			}
			at, ok := r.CapturedAt()
			if !ok {
				log.Printf("[History] Linha descartada: Data inválida %q (período %q)", r.Data, r.Periodo)
				continue
			}
			all = append(all, stamped{rec: r, at: at})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].at.Before(all[j].at)
	})

	last := make(map[string]int, len(all))
	for i, s := range all {
		last[s.rec.Periodo] = i
	}

	out := make([]model.Record, 0, len(last))
	for i, s := range all {
		if last[s.rec.Periodo] == i {
			out = append(out, s.rec)
		}
	}
	return out
}
