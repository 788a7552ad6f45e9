package domain

import "time"

type Key string

// Policy define o orçamento de admissão de um endpoint: quantas requisições
// cabem em uma janela de tempo.
//
// Imutável após o carregamento; a mesma Policy é compartilhada por todas as
// requisições do endpoint.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result é o resultado estruturado de uma verificação de admissão.
//
// Negar não é falha: o checker nunca retorna erro, apenas allow/deny com o
// saldo restante e o instante em que a janela corrente expira.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Checker decide se uma requisição identificada pode prosseguir agora.
//
// Observação: a implementação padrão é janela fixa; uma janela fixa admite
// até 2x o limite atravessando a fronteira de janelas (rajada nas bordas).
// Implementações alternativas (token bucket) suavizam isso.
type Checker interface {
	Check(key Key, p Policy) Result
	// Reset descarta o estado de uma chave incondicionalmente.
	Reset(key Key)
	// Clear esvazia todo o estado de admissão.
	Clear()
}

// Clock abstrai o relógio para que testes controlem o tempo da janela
// de forma determinística.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta uma função para o contrato Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
