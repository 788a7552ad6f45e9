// Package ratelimit fornece adapters HTTP (net/http) para controle de admissão
// por janela fixa e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa, token bucket, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + resolução de identificador +
//     tradução para status/headers/envelope
//
// Fluxo no gatekeeper:
//
//  1. Resolve o identificador do cliente (header de proxy confiável/X-Real-IP/XFF)
//  2. Chama a camada application para obter a decisão sob a policy do endpoint
//  3. Se bloqueado, responde 429 em envelope com Retry-After
//  4. Se permitido, propaga X-RateLimit-* e chama o próximo handler
//
// Variáveis de ambiente do binário (cmd/gatekeeper) controlam o comportamento,
// como RATE_POLICY_CONTACT, RATE_ALGORITHM e CONCURRENCY_MAX.
package ratelimit
