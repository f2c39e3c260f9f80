package tuya

import (
	"fmt"
	"net/url"

	"github.com/cmstar/go-errx"
)

/* 当前文件提供扫地机（sweeper）相关的接口。 */

// MapType 是地图文件的类型。
type MapType int

const (
	MapType_Layout MapType = 0 // 房间布局图。
	MapType_Path   MapType = 1 // 清扫路径图。
)

// MapResource 描述一个实时地图文件。
type MapResource struct {
	MapType MapType // 对应 map_type 字段。
	MapUrl  string  // 对应 map_url 字段，文件的下载地址，下载时不需要签名。
}

// RealtimeMapEndpoint 返回获取设备实时地图文件列表的接口路径。
func RealtimeMapEndpoint(deviceId string) string {
	return "/v1.0/users/sweepers/file/" + url.PathEscape(deviceId) + "/realtime-map"
}

// GetRealtimeMapResources 获取设备的实时地图文件列表，顺序与接口返回的一致。
func (x *Client) GetRealtimeMapResources(deviceId string) ([]MapResource, error) {
	env, err := x.Request(RealtimeMapEndpoint(deviceId))
	if err != nil {
		return nil, err
	}

	res, err := ParseMapResources(env.Result)
	if err != nil {
		return nil, errx.Wrap("tuya: realtime-map result", err)
	}
	return res, nil
}

// ParseMapResources 将 realtime-map 接口的 [Envelope.Result] 转换为 [MapResource] 列表。
// 每个元素需要有 map_type 和 map_url 字段，否则返回错误。 result 为 nil 时返回空列表。
func ParseMapResources(result any) ([]MapResource, error) {
	if result == nil {
		return nil, nil
	}

	items, err := ConvertValue[[]any](result)
	if err != nil {
		return nil, err
	}

	res := make([]MapResource, 0, len(items))
	for i, item := range items {
		m, err := ConvertValue[map[string]any](item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		mapType, err := ConvertValue[int](m["map_type"])
		if err != nil {
			return nil, fmt.Errorf("item %d: map_type: %w", i, err)
		}

		mapUrl, err := ConvertValue[string](m["map_url"])
		if err != nil {
			return nil, fmt.Errorf("item %d: map_url: %w", i, err)
		}

		res = append(res, MapResource{
			MapType: MapType(mapType),
			MapUrl:  mapUrl,
		})
	}

	return res, nil
}
