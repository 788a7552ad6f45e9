// Formatação de valores de header e arredondamentos de Retry-After.

package ratelimit

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// ceilSeconds arredonda para cima em segundos inteiros (mínimo 1 quando d > 0),
// o formato esperado pelo header Retry-After.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	s := int(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return s
}

// ceilMinutes idem, em minutos, para a mensagem humana do 429.
func ceilMinutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	m := seconds / 60
	if seconds%60 != 0 {
		m++
	}
	return m
}
