package model

import "time"

// Run é o registro de uma execução do pipeline, gravado no log de execuções.
// Status é "ok" ou "erro"; Etapa só é preenchida quando a execução falha.
type Run struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	IniciadoEm    time.Time `json:"iniciado_em"`
	FinalizadoEm  time.Time `json:"finalizado_em"`
	Status        string    `json:"status"`
	Etapa         string    `json:"etapa,omitempty"`
	Mensagem      string    `json:"mensagem,omitempty"`
	LinhasSemanal int       `json:"linhas_semanal"`
	LinhasMensal  int       `json:"linhas_mensal"`
}
