package dto

import "github.com/plastinin/measurer/internal/domain"

// MeasurementResponse результат измерения одного изображения
type MeasurementResponse struct {
	Area   float64 `json:"area"`   // см²
	Width  float64 `json:"width"`  // см
	Height float64 `json:"height"` // см
	URL    string  `json:"url"`
}

// MeasurementsFromDomain конвертирует результаты в DTO, сохраняя порядок
func MeasurementsFromDomain(results []domain.Measurement) []MeasurementResponse {
	out := make([]MeasurementResponse, len(results))
	for i, m := range results {
		out[i] = MeasurementResponse{
			Area:   m.Area,
			Width:  m.Width,
			Height: m.Height,
			URL:    m.ArtifactURL,
		}
	}
	return out
}
