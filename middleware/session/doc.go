// Package session resolve o estado de autenticação a partir dos cookies da
// requisição e decide o destino de rotas protegidas.
//
// Componentes:
//
//   - Provider: valida (e renova, se vencida) a sessão via provedor de
//     identidade; devolve diretivas de cookie em vez de mutar a resposta
//   - Policy: máquina de estados {caminho, temSessão} -> passar/redirecionar
//   - Guard: middleware que amarra os dois antes dos handlers de página
//
// Contrato central: cookies rotacionados em um refresh implícito precisam ser
// reescritos na resposta desta mesma passada. Mutar só o jar da requisição
// serve aos handlers seguintes, mas não chega ao cliente; quem não reanexa os
// cookies na resposta produz logouts intermitentes silenciosos.
package session
