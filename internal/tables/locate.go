package tables

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"

	"balanca/internal/model"
)

// LocateMode define como as tabelas semanal e mensal são escolhidas.
type LocateMode string

const (
	// ModeFingerprint compara o cabeçalho de cada tabela com os cabeçalhos esperados.
	ModeFingerprint LocateMode = "fingerprint"
	// ModePositional usa a primeira tabela como semanal e a segunda como mensal,
	// sem olhar o conteúdo. Modo degradado, só quando configurado.
	ModePositional LocateMode = "positional"
)

func ParseMode(s string) (LocateMode, error) {
	switch LocateMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFingerprint:
		return ModeFingerprint, nil
	case ModePositional:
		return ModePositional, nil
	}
	return "", fmt.Errorf("modo de localização inválido: %q", s)
}

// Block é uma tabela localizada, ainda em forma de nó HTML.
type Block struct {
	Kind  model.TableKind
	Table *goquery.Selection
}

// Locate encontra a tabela semanal e a mensal dentro do HTML renderizado.
func Locate(markup string, mode LocateMode) (weekly, monthly Block, err error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return Block{}, Block{}, fmt.Errorf("%w: html inválido: %v", model.ErrStructure, err)
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return Block{}, Block{}, fmt.Errorf("%w: esperava-se pelo menos 2 tabelas, mas foram encontradas %d", model.ErrStructure, tables.Length())
	}

	if mode == ModePositional {
		log.Printf("[Locator] Modo posicional ativo: primeira tabela = semanal, segunda = mensal")
		return Block{Kind: model.Semanal, Table: tables.Eq(0)},
			Block{Kind: model.Mensal, Table: tables.Eq(1)}, nil
	}

	found := make(map[model.TableKind]*goquery.Selection, len(model.Kinds))
	tables.EachWithBreak(func(_ int, t *goquery.Selection) bool {
		headers := headerTokens(t)
		for _, kind := range model.Kinds {
			if found[kind] != nil {
				continue
			}
			if matchesAny(headers, kind.Fingerprint()) {
				found[kind] = t
				break
			}
		}
		return len(found) < len(model.Kinds)
	})

	var missing []string
	for _, kind := range model.Kinds {
		if found[kind] == nil {
			missing = append(missing, kind.Label())
		}
	}
	if len(missing) > 0 {
		return Block{}, Block{}, fmt.Errorf("%w: não foi possível identificar as tabelas %s com os cabeçalhos esperados (%d tabelas na página)",
			model.ErrStructure, strings.Join(missing, " e "), tables.Length())
	}

	return Block{Kind: model.Semanal, Table: found[model.Semanal]},
		Block{Kind: model.Mensal, Table: found[model.Mensal]}, nil
}

// headerTokens devolve os textos da primeira linha, sem espaços e em caixa baixa.
func headerTokens(t *goquery.Selection) []string {
	first := t.Find("tr").First()
	if first.Length() == 0 {
		return nil
	}
	fold := cases.Fold()
	var out []string
	first.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		out = append(out, fold.String(strings.TrimSpace(c.Text())))
	})
	return out
}

func matchesAny(headers, expected []string) bool {
	for _, h := range headers {
		for _, e := range expected {
			if h == e {
				return true
			}
		}
	}
	return false
}
