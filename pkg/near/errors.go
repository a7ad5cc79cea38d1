package near

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	ErrorTypeUntyped               = "UntypedError"
	ErrorTypeTimeout               = "TimeoutError"
	ErrorTypeAccountDoesNotExist   = "AccountDoesNotExist"
	ErrorTypeAccessKeyDoesNotExist = "AccessKeyDoesNotExist"
	ErrorTypeCodeDoesNotExist      = "CodeDoesNotExist"
	ErrorTypeInvalidNonce          = "InvalidNonce"
)

// RemoteError is a failure reported by the node, either as a JSON-RPC error or as
// an error field inside a query result.
type RemoteError struct {
	Type    string
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Name is the error type reported by the node.
func (e *RemoteError) Name() string {
	return e.Type
}

var errorTypePatterns = []struct {
	pattern   *regexp.Regexp
	errorType string
}{
	{regexp.MustCompile(`^account .*? does not exist while viewing$`), ErrorTypeAccountDoesNotExist},
	{regexp.MustCompile(`^Account .*? doesn't exist$`), ErrorTypeAccountDoesNotExist},
	{regexp.MustCompile(`^access key .*? does not exist while viewing$`), ErrorTypeAccessKeyDoesNotExist},
	{regexp.MustCompile(`wasm execution failed with error: FunctionCallError\(CompilationError\(CodeDoesNotExist`), ErrorTypeCodeDoesNotExist},
	{regexp.MustCompile(`wasm execution failed with error: CompilationError\(CodeDoesNotExist`), ErrorTypeCodeDoesNotExist},
	{regexp.MustCompile(`Transaction nonce \d+ must be larger than nonce of the used access key \d+`), ErrorTypeInvalidNonce},
}

// errorTypeFromMessage derives a type from well known node messages, falling back to fallback.
func errorTypeFromMessage(message, fallback string) string {
	for _, p := range errorTypePatterns {
		if p.pattern.MatchString(message) {
			return p.errorType
		}
	}
	if fallback == "" {
		return ErrorTypeUntyped
	}
	return fallback
}

func newRemoteError(rpcErr *JSONRPCError) *RemoteError {
	var data string
	if len(rpcErr.Data) > 0 {
		if err := json.Unmarshal(rpcErr.Data, &data); err != nil {
			data = string(rpcErr.Data)
		}
	}

	remote := &RemoteError{
		Code:    rpcErr.Code,
		Message: fmt.Sprintf("[%d] %s: %s", rpcErr.Code, rpcErr.Message, data),
		Data:    rpcErr.Data,
	}

	switch {
	case rpcErr.Cause != nil && rpcErr.Cause.Name != "":
		remote.Type = rpcErr.Cause.Name
	case data == "Timeout":
		remote.Type = ErrorTypeTimeout
		remote.Message = "send_tx timeout"
	default:
		remote.Type = errorTypeFromMessage(data, rpcErr.Name)
	}

	return remote
}

func newQueryError(requestType, message string) *RemoteError {
	return &RemoteError{
		Type:    errorTypeFromMessage(message, ""),
		Message: fmt.Sprintf("Querying %s failed: %s", requestType, message),
	}
}
