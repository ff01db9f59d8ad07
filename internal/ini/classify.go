package ini

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BartekS5/legacysync/pkg/models"
)

// criticalKeywords mark keys whose values the legacy system cannot run without.
var criticalKeywords = []string{
	"DATABASE", "DB", "CONNECTION", "SERVER", "HOST", "PORT", "PASSWORD", "USER",
	"CICS", "REGION", "SISTEMA", "VERSAO", "PATH", "DIRETORIO",
}

// InferType classifies a value. First match wins: empty, boolean literal,
// 32-bit integer, decimal, path, string.
func InferType(value string) models.ValueType {
	if value == "" {
		return models.TypeString
	}
	if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
		return models.TypeBoolean
	}
	if _, err := strconv.ParseInt(value, 10, 32); err == nil {
		return models.TypeInteger
	}
	if isDecimal(value) {
		return models.TypeDecimal
	}
	if isPath(value) {
		return models.TypePath
	}
	return models.TypeString
}

// isDecimal accepts fixed-point and exponent notation. ParseFloat alone would
// also take "NaN", "Inf" and hex floats.
func isDecimal(value string) bool {
	if strings.TrimLeft(value, "0123456789+-.eE") != "" {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func isPath(value string) bool {
	if filepath.IsAbs(value) || strings.ContainsAny(value, `\/`) {
		return true
	}
	// Drive-rooted Windows paths such as "C:" or "D:data".
	return len(value) >= 2 && value[1] == ':' && isASCIILetter(value[0])
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsCritical reports whether the uppercased key contains a critical keyword.
func IsCritical(key string) bool {
	upper := strings.ToUpper(key)
	for _, kw := range criticalKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
