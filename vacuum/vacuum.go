// vacuum 包提供对单个扫地机设备的访问，当前支持获取实时地图。
package vacuum

import (
	"net/http"
	"time"

	"github.com/cmstar/go-logx"
	"github.com/cmstar/go-tuyavacuum/tuya"
)

// VacuumOp 用于初始化 [Vacuum] 。
type VacuumOp struct {
	BaseUrl      string        // API 地址，如 [tuya.BaseUrl_CentralEurope] 。
	ClientId     string        // 开发者的 Access ID 。
	ClientSecret string        // 开发者的 Access Secret 。
	DeviceId     string        // 设备 ID 。
	Timeout      time.Duration // 每个请求的超时时间。为 0 时使用 [tuya.DefaultTimeout] 。
	HttpClient   *http.Client  // 用于发送请求，包括下载地图文件。为 nil 时使用一个新的 [http.Client] 。
	Logger       logx.Logger   // 用于输出日志。为 nil 时使用 [logx.NopLogger] 。
}

// MapData 是设备的实时地图数据。未返回的部分为 nil 。
type MapData struct {
	LayoutData []byte // 房间布局图，对应 [tuya.MapType_Layout] 。
	PathData   []byte // 清扫路径图，对应 [tuya.MapType_Path] 。
}

// Vacuum 表示一个扫地机设备。
type Vacuum struct {
	deviceId string
	api      *tuya.Client
	logger   logx.Logger
}

// NewVacuum 创建一个 [Vacuum] 。若 DeviceId 未给定，则 panic ；其余参数的校验见 [tuya.NewClient] 。
func NewVacuum(op VacuumOp) *Vacuum {
	if op.DeviceId == "" {
		panic("DeviceId must be provided")
	}

	if op.Logger == nil {
		op.Logger = logx.NopLogger
	}

	api := tuya.NewClient(tuya.ClientOp{
		BaseUrl:      op.BaseUrl,
		ClientId:     op.ClientId,
		ClientSecret: op.ClientSecret,
		Timeout:      op.Timeout,
		HttpClient:   op.HttpClient,
		Logger:       op.Logger,
	})

	return &Vacuum{
		deviceId: op.DeviceId,
		api:      api,
		logger:   op.Logger,
	}
}

// DeviceId 返回设备 ID 。
func (v *Vacuum) DeviceId() string {
	return v.deviceId
}

// Api 返回用于访问涂鸦云的 [tuya.Client] 。
func (v *Vacuum) Api() *tuya.Client {
	return v.api
}

// FetchRealtimeMapData 获取设备的实时地图。
//
// 依次下载接口返回的每个地图文件（不带签名），按 map_type 归类：
//   - 同一类型出现多次时，以最后一个为准。
//   - 无法识别的类型输出一条 WARN 日志后忽略，不会下载，不影响其他文件。
func (v *Vacuum) FetchRealtimeMapData() (MapData, error) {
	var res MapData

	resources, err := v.api.GetRealtimeMapResources(v.deviceId)
	if err != nil {
		return res, err
	}

	for _, r := range resources {
		var dst *[]byte
		switch r.MapType {
		case tuya.MapType_Layout:
			dst = &res.LayoutData
		case tuya.MapType_Path:
			dst = &res.PathData
		default:
			v.logger.Log(logx.LevelWarn, "unknown map type", "MapType", int(r.MapType), "MapUrl", r.MapUrl)
			continue
		}

		data, err := v.api.Download(r.MapUrl)
		if err != nil {
			return MapData{}, err
		}

		v.logger.Log(logx.LevelDebug, "map downloaded", "MapType", int(r.MapType), "MapUrl", r.MapUrl, "Length", len(data))
		*dst = data
	}

	return res, nil
}
