package domain

import (
	"path/filepath"
	"strings"
)

// OutputSuffix вставляется воркером перед расширением выходного изображения
const OutputSuffix = "_output"

// WorkItem одно загруженное изображение, ожидающее измерения
type WorkItem struct {
	FileName   string `json:"file_name"`   // Оригинальное имя файла
	InputPath  string `json:"input_path"`  // Путь к сохранённому изображению
	OutputPath string `json:"output_path"` // Ожидаемый путь к выходному изображению
}

// NewWorkItem создаёт WorkItem и выводит путь к выходному изображению
func NewWorkItem(fileName, inputPath string) WorkItem {
	return WorkItem{
		FileName:   fileName,
		InputPath:  inputPath,
		OutputPath: OutputPathFor(inputPath),
	}
}

// OutputPathFor возвращает путь <dir>/<name>_output<ext> для входного пути
func OutputPathFor(inputPath string) string {
	dir, base := filepath.Split(inputPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return dir + name + OutputSuffix + ext
}

// Invocation результат одного запуска воркера
type Invocation struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Measurement результат измерения одного изображения
type Measurement struct {
	Area        float64 `json:"area"`   // Площадь bounding box, см²
	Width       float64 `json:"width"`  // Ширина, см
	Height      float64 `json:"height"` // Высота, см
	ArtifactURL string  `json:"url"`
	// Путь к артефакту на диске, наружу не отдаётся
	ArtifactPath string `json:"-"`
	// Ключ объекта в S3. По нему URL перевыпускается при чтении пакета.
	ArtifactKey string `json:"artifact_key,omitempty"`
}

// WorkResult итог обработки одного WorkItem: либо Measurement, либо Err
type WorkResult struct {
	Item        WorkItem
	Measurement *Measurement
	Err         error
}

// Failed сообщает, завершилась ли обработка ошибкой
func (r WorkResult) Failed() bool {
	return r.Err != nil
}
