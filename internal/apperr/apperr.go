package apperr

import "fmt"

// NetworkError 请求未到达服务端（连接失败、超时、熔断）。
// 调用方应降级为空/旧数据展示，禁止向上抛出导致界面崩溃。
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("network error: %s", e.Op)
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError 本地输入校验失败，定位到具体字段。
// 校验失败的提交不允许发起任何网络请求。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// AuthorizationError 账户无有效试用/订阅，应整屏跳转而不是行内提示。
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized: %s", e.Reason)
}

// ServerError 服务端返回非 2xx，并尽量携带服务端给出的 message。
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

func NewNetworkError(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
