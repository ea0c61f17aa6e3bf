package helpers

import (
	"go.uber.org/zap/zapcore"
)

// GetZapFieldsAsMap converts zapcore.Field array to map for easy testing
func GetZapFieldsAsMap(fields []zapcore.Field) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range fields {
		switch field.Type {
		case zapcore.StringType:
			result[field.Key] = field.String
		case zapcore.Int64Type:
			result[field.Key] = field.Integer
		case zapcore.DurationType:
			result[field.Key] = field.Integer
		case zapcore.BoolType:
			result[field.Key] = field.Integer == 1
		case zapcore.ErrorType:
			if field.Interface != nil {
				result[field.Key] = field.Interface.(error)
			}
		default:
			if field.Interface != nil {
				result[field.Key] = field.Interface
			}
		}
	}
	return result
}
