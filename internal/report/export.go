package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Column — одна колонка строки экспорта: имя и строковое значение.
type Column struct {
	Key   string
	Value string
}

// Row — упорядоченный набор колонок одной строки экспорта. Порядок
// колонок первой строки задаёт порядок заголовка.
type Row []Column

// MarshalJSON сериализует строку как объект, сохраняя порядок колонок.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, col := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(col.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) get(key string) string {
	for _, col := range r {
		if col.Key == key {
			return col.Value
		}
	}
	return ""
}

// Export приводит строки отчёта к указанному формату: csv — таблица,
// json — отформатированный JSON. Неподдерживаемый формат возвращает
// данные без изменений.
func Export(rows []Row, format string) (any, error) {
	switch format {
	case "csv":
		return ToCSV(rows), nil
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return string(data), nil
	default:
		return rows, nil
	}
}

// ToCSV форматирует строки в CSV: заголовок повторяет порядок колонок
// первой строки, значения с запятой берутся в кавычки. Пустой список
// даёт пустую строку.
func ToCSV(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	headers := make([]string, 0, len(rows[0]))
	for _, col := range rows[0] {
		headers = append(headers, col.Key)
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))

	for _, row := range rows {
		b.WriteByte('\n')
		for i, header := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvValue(row.get(header)))
		}
	}

	return b.String()
}

func csvValue(value string) string {
	if strings.Contains(value, ",") {
		return `"` + value + `"`
	}
	return value
}
