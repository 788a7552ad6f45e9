// Package envelope padroniza o formato das respostas JSON do gatekeeper.
//
// Toda resposta, sucesso ou falha, sai em um de dois formatos, nunca misturados:
//
//	{"success":true,"data":...,"message":"...","timestamp":"..."}
//	{"error":"...","details":...,"timestamp":"..."}
//
// O campo details só aparece quando a política de divulgação permite
// (desenvolvimento); em produção ele é sempre omitido, independente da falha.
//
// O pacote também decide os headers de CORS (allow-list explícita, nunca
// wildcard, nunca refletindo origem desconhecida) e os headers de segurança
// estáticos anexados a toda resposta.
package envelope
