package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const measurementFields = 3

// ParseMeasurement разбирает вывод воркера вида "<area>,<width>,<height>".
// Допускаются пробелы вокруг полей и завершающий перевод строки.
// Лишние поля, недесятичные, бесконечные и отрицательные значения отвергаются.
func ParseMeasurement(raw string) (area, width, height float64, err error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if len(fields) != measurementFields {
		return 0, 0, 0, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidWorkerOutput, measurementFields, len(fields))
	}

	values := make([]float64, measurementFields)
	for i, field := range fields {
		field = strings.TrimSpace(field)
		// ParseFloat понимает и шестнадцатеричную запись, воркер пишет только десятичную
		if strings.ContainsAny(field, "xX") {
			return 0, 0, 0, fmt.Errorf("%w: field %d is not a decimal number", ErrInvalidWorkerOutput, i+1)
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: field %d: %v", ErrInvalidWorkerOutput, i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, fmt.Errorf("%w: field %d is not finite", ErrInvalidWorkerOutput, i+1)
		}
		if v < 0 {
			return 0, 0, 0, fmt.Errorf("%w: field %d is negative", ErrInvalidWorkerOutput, i+1)
		}
		values[i] = v
	}

	return values[0], values[1], values[2], nil
}
