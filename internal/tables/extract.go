package tables

import (
	"fmt"

	"balanca/internal/model"
)

// Extract converte a tabela localizada em cabeçalho + linhas retangulares.
// Linhas sem <td> são separadores e ficam de fora; linhas curtas são
// completadas com "" e linhas longas são cortadas na largura do cabeçalho.
func Extract(b Block) (model.TableBlock, error) {
	out := model.TableBlock{Kind: b.Kind}
	if b.Table == nil {
		return out, fmt.Errorf("%w: tabela %s não informada", model.ErrExtraction, b.Kind.Label())
	}

	rows := b.Table.Find("tr")
	if rows.Length() == 0 {
		return out, fmt.Errorf("%w: nenhuma linha encontrada na tabela %s", model.ErrExtraction, b.Kind.Label())
	}

	headers := cellTexts(rows.First().Find("th, td"))
	if len(headers) == 0 {
		return out, fmt.Errorf("%w: nenhum cabeçalho encontrado na tabela %s", model.ErrExtraction, b.Kind.Label())
	}

	var data [][]string
	for i := 1; i < rows.Length(); i++ {
		cols := cellTexts(rows.Eq(i).Find("td"))
		if len(cols) == 0 {
			continue
		}
		data = append(data, fitWidth(cols, len(headers)))
	}
	if len(data) == 0 {
		return out, fmt.Errorf("%w: tabela %s sem linhas de dados", model.ErrExtraction, b.Kind.Label())
	}

	out.Headers = headers
	out.Rows = data
	return out, nil
}

func fitWidth(cols []string, width int) []string {
	if len(cols) > width {
		return cols[:width]
	}
	for len(cols) < width {
		cols = append(cols, "")
	}
	return cols
}
