package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"balanca/internal/model"
)

// CSVStore grava um arquivo por tabela no diretório Dir
// (historico_semanais.csv e historico_mensais.csv).
type CSVStore struct {
	Dir string
}

func (s *CSVStore) Path(kind model.TableKind) string {
	return filepath.Join(s.Dir, kind.HistoryFile())
}

func (s *CSVStore) Load(kind model.TableKind) (model.Dataset, error) {
	ds := model.NewDataset(kind)

	f, err := os.Open(s.Path(kind))
	if errors.Is(err, os.ErrNotExist) {
		return ds, nil
	}
	if err != nil {
		return ds, fmt.Errorf("erro ao abrir histórico %s: %w", kind, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return ds, nil
	}
	if err != nil {
		return ds, fmt.Errorf("erro ao ler cabeçalho do histórico %s: %w", kind, err)
	}
	idx := columnIndex(header, kind)

	line := 1
	for {
		rec, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				log.Printf("[History] Linha %d de %s ignorada: %v", line, kind.HistoryFile(), err)
				continue
			}
			return ds, fmt.Errorf("erro ao ler histórico %s: %w", kind, err)
		}
		ds.Records = append(ds.Records, model.Record{
			Periodo:     field(rec, idx[kind.PeriodColumn()]),
			Exportacoes: parseStored(field(rec, idx[model.ColunaExportacoes])),
			Importacoes: parseStored(field(rec, idx[model.ColunaImportacoes])),
			Data:        field(rec, idx[model.ColunaData]),
		})
	}
	return ds, nil
}

// Save grava num arquivo temporário do mesmo diretório e troca pelo definitivo
// com rename, para que nunca exista um histórico pela metade no disco.
func (s *CSVStore) Save(ds model.Dataset) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("erro ao criar diretório do histórico: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+ds.Kind.HistoryFile()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(ds.Columns()); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range ds.Records {
		row := []string{r.Periodo, formatValor(r.Exportacoes), formatValor(r.Importacoes), r.Data}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao gravar histórico %s: %w", ds.Kind, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.Path(ds.Kind)); err != nil {
		return fmt.Errorf("erro ao substituir histórico %s: %w", ds.Kind, err)
	}
	return nil
}

// columnIndex mapeia o cabeçalho do arquivo para as colunas canônicas.
// Sem a coluna de período pelo nome, a primeira coluna é usada.
func columnIndex(header []string, kind model.TableKind) map[string]int {
	idx := map[string]int{
		kind.PeriodColumn():     -1,
		model.ColunaExportacoes: -1,
		model.ColunaImportacoes: -1,
		model.ColunaData:        -1,
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if pos, ok := idx[h]; ok && pos == -1 {
			idx[h] = i
		}
	}
	if idx[kind.PeriodColumn()] == -1 && len(header) > 0 {
		idx[kind.PeriodColumn()] = 0
	}
	return idx
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
