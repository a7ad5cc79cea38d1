package utils

func InStrSlice(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// Redact returns a shallow copy of fields without the given keys. Used to keep
// secrets and amounts out of log lines.
func Redact(fields map[string]interface{}, keys ...string) map[string]interface{} {
	redacted := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if InStrSlice(keys, k) {
			continue
		}
		redacted[k] = v
	}
	return redacted
}
