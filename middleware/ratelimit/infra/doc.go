// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - WindowStore: contador por janela fixa, em memória, com limpeza periódica
//   - SmoothStore: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - RedisStatsStore: contadores best-effort de decisões em Redis
package infra
