package domain

// BatchStatus представляет статус пакетного измерения
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"    // Пакет создан, ожидает обработки
	BatchStatusProcessing BatchStatus = "processing" // Пакет в обработке
	BatchStatusCompleted  BatchStatus = "completed"  // Все изображения измерены
	BatchStatusFailed     BatchStatus = "failed"     // Пакет завершился с ошибкой
)

// IsValid проверяет валидность статуса
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusProcessing, BatchStatusCompleted, BatchStatusFailed:
		return true
	}
	return false
}

// IsFinal проверяет, является ли статус финальным
func (s BatchStatus) IsFinal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

func (s BatchStatus) String() string {
	return string(s)
}
