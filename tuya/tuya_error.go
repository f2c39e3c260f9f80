package tuya

import (
	"errors"
	"fmt"

	"github.com/cmstar/go-errx"
)

/*
当前文件提供涂鸦云返回的错误码的识别。
错误码参考 https://developer.tuya.com/en/docs/iot/error-code?id=K989ruxx88swc
*/

// ErrorKind 是 [CloudError] 的分类。
type ErrorKind int

const (
	ErrorKind_Unknown             ErrorKind = iota // 未能识别的错误码。
	ErrorKind_InvalidClientId                      // client_id 无效，错误码 1005 。
	ErrorKind_InvalidClientSecret                  // secret 或签名无效，错误码 1001 、 1004 。
	ErrorKind_InvalidDeviceId                      // 错误码 1106 。
	ErrorKind_CrossRegionAccess                    // 请求的 IP 属于其他数据中心，不允许跨区访问，错误码 2007 。
)

// 1106 的原意是没有权限访问此接口或设备，这里假定为设备 ID 无效。
var _errorKindByCode = map[int]ErrorKind{
	1001: ErrorKind_InvalidClientSecret,
	1004: ErrorKind_InvalidClientSecret,
	1005: ErrorKind_InvalidClientId,
	1106: ErrorKind_InvalidDeviceId,
	2007: ErrorKind_CrossRegionAccess,
}

// ErrorKindOf 返回错误码对应的 [ErrorKind] ，无法识别时返回 [ErrorKind_Unknown] 。
func ErrorKindOf(code int) ErrorKind {
	return _errorKindByCode[code] // 零值即 ErrorKind_Unknown 。
}

// String 实现 [fmt.Stringer] 。
func (k ErrorKind) String() string {
	switch k {
	case ErrorKind_InvalidClientId:
		return "InvalidClientId"
	case ErrorKind_InvalidClientSecret:
		return "InvalidClientSecret"
	case ErrorKind_InvalidDeviceId:
		return "InvalidDeviceId"
	case ErrorKind_CrossRegionAccess:
		return "CrossRegionAccess"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) describe() string {
	switch k {
	case ErrorKind_InvalidClientId:
		return "invalid client id"
	case ErrorKind_InvalidClientSecret:
		return "invalid client secret"
	case ErrorKind_InvalidDeviceId:
		return "invalid device id"
	case ErrorKind_CrossRegionAccess:
		return "wrong server region, cross-region access is not allowed"
	default:
		return "request failed, unknown error"
	}
}

// CloudError 表示涂鸦云返回了 success=false 。
// 其 Cause 是一个 [errx.BizError] ，记录原始的错误码和错误消息。
type CloudError struct {
	errx.ErrorCause

	Kind     ErrorKind // Kind 是根据错误码识别的错误分类。
	Code     int       // Code 是原始的错误码。
	Message  string    // Message 是接口返回的 msg 字段。
	Endpoint string    // Endpoint 是发生错误的请求路径。
	Envelope *Envelope // Envelope 是接口返回的原始内容。
}

var _ error = (*CloudError)(nil)

// NewCloudError 根据接口返回的内容创建 [CloudError] 。 env.Success 应为 false 。
func NewCloudError(endpoint string, env *Envelope) *CloudError {
	return &CloudError{
		ErrorCause: errx.ErrorCause{Err: errx.NewBizError(env.Code, env.Msg, nil)},
		Kind:       ErrorKindOf(env.Code),
		Code:       env.Code,
		Message:    env.Msg,
		Endpoint:   endpoint,
		Envelope:   env,
	}
}

// Error 实现 error 接口。格式为：
//
//	tuya: {kind description} ({code}) {msg}
//
// 对于 [ErrorKind_Unknown] ，末尾追加原始的返回内容。
func (e *CloudError) Error() string {
	msg := fmt.Sprintf("tuya: %s (%d)", e.Kind.describe(), e.Code)
	if e.Message != "" {
		msg += " " + e.Message
	}

	if e.Kind == ErrorKind_Unknown && e.Envelope != nil {
		msg += fmt.Sprintf(", endpoint %q, response %+v", e.Endpoint, *e.Envelope)
	}
	return msg
}

// Unwrap 返回记录错误码的 [errx.BizError] 。
func (e *CloudError) Unwrap() error {
	return e.Err
}

// IsErrorKind 判断 err 的错误链上是否有指定分类的 [CloudError] 。
func IsErrorKind(err error, kind ErrorKind) bool {
	var cloudErr *CloudError
	if errors.As(err, &cloudErr) {
		return cloudErr.Kind == kind
	}
	return false
}
