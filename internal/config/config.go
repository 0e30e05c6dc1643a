package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sheetdiff-service/internal/diff/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	// параметры сравнения по умолчанию; запрос может их переопределить
	SimilarityThreshold float64
	StringMetric        string
	ShapeTolerance      float64
	CompareShapes       bool
	HeaderRow           int
}

// Load читает окружение. Файл .env (если есть) подмешивается, но не перекрывает
// уже выставленные переменные.
func Load() Config {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  mb,
		LogFile:      getenv("LOG_FILE", "logs/sheetdiff-service.log"),

		SimilarityThreshold: getfloat("SIMILARITY_THRESHOLD", model.DefaultThreshold),
		StringMetric:        strings.ToLower(getenv("STRING_METRIC", string(model.MetricPositional))),
		ShapeTolerance:      getfloat("SHAPE_TOLERANCE", model.DefaultShapeTolerance),
		CompareShapes:       getbool("COMPARE_SHAPES", true),
		HeaderRow:           getint("HEADER_ROW", 1),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// DiffOptions: опции сравнения по умолчанию для этого процесса.
func (c Config) DiffOptions() model.Options {
	opt := model.DefaultOptions()
	opt.Threshold = c.SimilarityThreshold
	opt.StringMetric = model.StringMetric(c.StringMetric)
	opt.ShapeTolerance = c.ShapeTolerance
	opt.CompareShapes = c.CompareShapes
	return opt
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	i, err := strconv.Atoi(getenv(k, ""))
	if err != nil {
		return def
	}
	return i
}

func getfloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(getenv(k, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func getbool(k string, def bool) bool {
	b, err := strconv.ParseBool(getenv(k, ""))
	if err != nil {
		return def
	}
	return b
}
