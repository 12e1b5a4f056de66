package query

import (
	"fmt"
	"strings"
	"unicode"
)

var forbidden = map[string]bool{
	"DROP":     true,
	"DELETE":   true,
	"UPDATE":   true,
	"INSERT":   true,
	"CREATE":   true,
	"ALTER":    true,
	"TRUNCATE": true,
	"REPLACE":  true,
	"GRANT":    true,
}

// Validate проверяет SQL-запрос на наличие запрещённых конструкций.
// Сравниваются отдельные слова, поэтому имена колонок вроде updated_at не мешают.
func Validate(sql string) error {
	words := strings.FieldsFunc(strings.ToUpper(sql), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, w := range words {
		if forbidden[w] {
			return fmt.Errorf("forbidden operation: %s", w)
		}
	}
	return nil
}
