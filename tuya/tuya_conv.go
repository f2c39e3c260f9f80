package tuya

import (
	"fmt"
	"reflect"

	"github.com/cmstar/go-conv"
)

// Conv 是用于转换 [Envelope.Result] 的 [conv.Conv] 实例，使用大小写不敏感（case-insensitive）的方式处理字段。
//
// JSON 反序列化到 any 后，数值均为 float64 ，部分接口还会以字符串返回数值，
// 通过 Conv 可以统一转换到所需的类型。
var Conv = conv.Conv{
	Conf: conv.Config{
		FieldMatcherCreator: &conv.SimpleMatcherCreator{
			Conf: conv.SimpleMatcherConfig{
				CaseInsensitive: true,
			},
		},
	},
}

// ConvertValue 使用 [Conv] 将 v 转换为类型 T 。 v 为 nil 时返回错误。
func ConvertValue[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, fmt.Errorf("value is missing, want %T", zero)
	}

	if out, ok := v.(T); ok {
		return out, nil
	}

	res, err := Conv.ConvertType(v, reflect.TypeOf(zero))
	if err != nil {
		return zero, err
	}

	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %T to %T", v, zero)
	}
	return out, nil
}
