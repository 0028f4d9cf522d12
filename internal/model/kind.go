package model

import "fmt"

// TableKind identifica qual das duas tabelas da página um dado pertence.
type TableKind string

const (
	Semanal TableKind = "semanal"
	Mensal  TableKind = "mensal"
)

// Nomes canônicos das colunas persistidas
const (
	ColunaPeriodo     = "Período"
	ColunaMes         = "Mês"
	ColunaExportacoes = "EXPORTAÇÕES Valor"
	ColunaImportacoes = "IMPORTAÇÕES Valor"
	ColunaData        = "Data"
	ColunaVariacao    = "Variação % Exportações"
)

// Kinds lista as tabelas na ordem em que o localizador tenta atribuí-las.
var Kinds = []TableKind{Semanal, Mensal}

// PeriodColumn retorna o nome canônico da primeira coluna (chave de deduplicação).
func (k TableKind) PeriodColumn() string {
	if k == Mensal {
		return ColunaMes
	}
	return ColunaPeriodo
}

// Fingerprint retorna os cabeçalhos esperados (já em caixa baixa) para a tabela.
func (k TableKind) Fingerprint() []string {
	if k == Mensal {
		return []string{"mês", "exportações", "importações"}
	}
	return []string{"período", "exportações", "importações"}
}

// HistoryFile é o nome padrão do arquivo histórico da tabela.
func (k TableKind) HistoryFile() string {
	if k == Mensal {
		return "historico_mensais.csv"
	}
	return "historico_semanais.csv"
}

// Columns retorna as colunas persistidas, na ordem do arquivo.
func (k TableKind) Columns() []string {
	return []string{k.PeriodColumn(), ColunaExportacoes, ColunaImportacoes, ColunaData}
}

func (k TableKind) Valid() bool {
	return k == Semanal || k == Mensal
}

// Label é usado em mensagens para o usuário.
func (k TableKind) Label() string {
	switch k {
	case Semanal:
		return "Semanal"
	case Mensal:
		return "Mensal"
	}
	return string(k)
}

func ParseKind(s string) (TableKind, error) {
	k := TableKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("tipo de tabela desconhecido: %q", s)
	}
	return k, nil
}
