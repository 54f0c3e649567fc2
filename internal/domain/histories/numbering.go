package histories

import (
	"fmt"
	"regexp"
	"strconv"
)

// Las historias se numeran por año: HC-2025-0001, HC-2025-0002, ...
var numberPattern = regexp.MustCompile(`^HC-(\d{4})-(\d{4,})$`)

// FormatNumber arma el número de historia para el año y consecutivo dados.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("HC-%04d-%04d", year, seq)
}

// ParseNumber extrae año y consecutivo de un número de historia.
func ParseNumber(number string) (year, seq int, ok bool) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	seq, _ = strconv.Atoi(m[2])
	return year, seq, true
}
