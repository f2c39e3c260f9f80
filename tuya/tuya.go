package tuya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cmstar/go-errx"
	"github.com/cmstar/go-logx"
)

// 各数据中心的 API 地址。
// 参考 https://developer.tuya.com/en/docs/iot/api-request?id=Ka4a8uuo1j4t4
const (
	BaseUrl_China          = "https://openapi.tuyacn.com"
	BaseUrl_WesternAmerica = "https://openapi.tuyaus.com"
	BaseUrl_EasternAmerica = "https://openapi-ueaz.tuyaus.com"
	BaseUrl_CentralEurope  = "https://openapi.tuyaeu.com"
	BaseUrl_WesternEurope  = "https://openapi-weaz.tuyaeu.com"
	BaseUrl_India          = "https://openapi.tuyain.com"
)

const (
	// DefaultTimeout 是每个请求的默认超时时间。
	DefaultTimeout = 2500 * time.Millisecond

	// TokenEndpoint 是获取 access token 的接口。
	TokenEndpoint = "/v1.0/token?grant_type=1"
)

// Envelope 是涂鸦云接口返回的 JSON 的结构。
type Envelope struct {
	// Success 表示请求是否成功。
	Success bool `json:"success"`

	// Code 是错误码，仅在 Success 为 false 时有值。
	Code int `json:"code,omitempty"`

	// Msg 是错误消息，仅在 Success 为 false 时有值。
	Msg string `json:"msg,omitempty"`

	// Result 是返回的数据，仅在 Success 为 true 时有值。
	// 其值是 JSON 反序列化到 any 的结果，可通过 [Conv] 转换为具体的类型。
	Result any `json:"result,omitempty"`

	// T 是服务端的 13 位毫秒级时间戳。
	T int64 `json:"t"`

	// Tid 是链路 ID 。
	Tid string `json:"tid,omitempty"`
}

// ClientOp 用于初始化 [Client] 。
type ClientOp struct {
	BaseUrl      string        // API 地址，如 [BaseUrl_CentralEurope] 。末尾的“/”会被去掉。
	ClientId     string        // 开发者的 Access ID 。
	ClientSecret string        // 开发者的 Access Secret ，用作签名的密钥。
	Timeout      time.Duration // 每个请求的超时时间。为 0 时使用 [DefaultTimeout] 。
	HttpClient   *http.Client  // 用于发送请求。为 nil 时使用一个新的 [http.Client] 。
	Logger       logx.Logger   // 用于输出日志。为 nil 时使用 [logx.NopLogger] 。
}

// Client 用于调用涂鸦云的开放 API 。
// 除了 [http.Client] 外没有可变的状态，可以在多个 goroutine 中使用。
type Client struct {
	baseUrl      string
	clientId     string
	clientSecret string
	timeout      time.Duration
	httpClient   *http.Client
	logger       logx.Logger

	// 以下字段便于测试时替换。
	now   func() time.Time
	nonce func() string
}

// NewClient 创建一个 [Client] 。若 BaseUrl 、 ClientId 或 ClientSecret 未给定，则 panic 。
func NewClient(op ClientOp) *Client {
	if op.BaseUrl == "" {
		panic("BaseUrl must be provided")
	}
	if op.ClientId == "" {
		panic("ClientId must be provided")
	}
	if op.ClientSecret == "" {
		panic("ClientSecret must be provided")
	}

	c := &Client{
		baseUrl:      strings.TrimRight(op.BaseUrl, "/"),
		clientId:     op.ClientId,
		clientSecret: op.ClientSecret,
		timeout:      op.Timeout,
		httpClient:   op.HttpClient,
		logger:       op.Logger,
		now:          time.Now,
		nonce:        NewNonce,
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	if c.httpClient == nil {
		c.httpClient = new(http.Client)
	}

	if c.logger == nil {
		c.logger = logx.NopLogger
	}

	return c
}

// ClientId 返回当前使用的 client_id 。
func (x *Client) ClientId() string {
	return x.clientId
}

// GenerateSignature 使用当前的 client_id 和 secret 计算签名，见 [Sign] 。
func (x *Client) GenerateSignature(endpoint, timestamp, nonce, accessToken string) string {
	return Sign(x.clientId, x.clientSecret, endpoint, timestamp, nonce, accessToken)
}

// NewRequest 创建一个带签名的 GET 请求。每次调用都会使用新的时间戳和 nonce 。
//   - endpoint 请求的路径，包含 query string ，如 /v1.0/token?grant_type=1 。
//   - accessToken 为空时不发送 access_token 头。
func (x *Client) NewRequest(endpoint, accessToken string) (*http.Request, error) {
	r, err := http.NewRequest(http.MethodGet, x.baseUrl+endpoint, nil)
	if err != nil {
		return nil, err
	}

	timestamp := Timestamp(x.now())
	nonce := x.nonce()
	sign := x.GenerateSignature(endpoint, timestamp, nonce, accessToken)

	// 直接写 map ，避免头的名称被转为 Client_id 这样的格式。
	h := r.Header
	h[HttpHeaderClientId] = []string{x.clientId}
	h[HttpHeaderSign] = []string{sign}
	h[HttpHeaderSignMethod] = []string{SignMethod}
	h[HttpHeaderTimestamp] = []string{timestamp}
	h[HttpHeaderLang] = []string{Lang}
	h[HttpHeaderNonce] = []string{nonce}

	if accessToken != "" {
		h[HttpHeaderAccessToken] = []string{accessToken}
	}

	return r, nil
}

// RawRequest 发送一个带签名的 GET 请求，并返回解析后的 [Envelope] 。
//
// 若 success 为 false ，返回 [*CloudError] ，其 Kind 由错误码决定。
// 网络错误、超时及 JSON 格式错误不做归类，经 [errx.Wrap] 包装后返回。
func (x *Client) RawRequest(endpoint, accessToken string) (*Envelope, error) {
	r, err := x.NewRequest(endpoint, accessToken)
	if err != nil {
		return nil, errx.Wrap(fmt.Sprintf("request %q", endpoint), err)
	}

	body, _, err := x.do(r, x.timeout)
	if err != nil {
		return nil, errx.Wrap(fmt.Sprintf("request %q", r.URL.String()), err)
	}

	x.logger.Log(logx.LevelDebug, "tuya response",
		"Endpoint", endpoint,
		"Body", string(body),
	)

	env := new(Envelope)
	err = json.Unmarshal(body, env)
	if err != nil {
		return nil, errx.Wrap(fmt.Sprintf("request %q: json unmarshal", r.URL.String()), err)
	}

	if !env.Success {
		return nil, NewCloudError(endpoint, env)
	}

	return env, nil
}

// GetAccessToken 请求 [TokenEndpoint] 获取一个新的 access token 。
func (x *Client) GetAccessToken() (string, error) {
	env, err := x.RawRequest(TokenEndpoint, "")
	if err != nil {
		return "", err
	}

	m, err := ConvertValue[map[string]any](env.Result)
	if err != nil {
		return "", errx.Wrap("tuya: token result", err)
	}

	token, err := ConvertValue[string](m["access_token"])
	if err != nil {
		return "", errx.Wrap("tuya: access_token", err)
	}

	if token == "" {
		return "", fmt.Errorf("tuya: empty access_token")
	}

	return token, nil
}

// Request 先获取 access token ，再用其请求给定的 endpoint 。
// 每次调用都会重新获取 access token ，不做缓存，也不会在 token 过期时重试。
func (x *Client) Request(endpoint string) (*Envelope, error) {
	token, err := x.GetAccessToken()
	if err != nil {
		return nil, err
	}
	return x.RawRequest(endpoint, token)
}

// Download 使用 GET 读取给定 URL 的全部数据。请求不带签名，也不带任何涂鸦云的请求头。
// HTTP 状态码不是 2xx 时返回错误。
// 不使用 [ClientOp.Timeout] ，超时仅由 [ClientOp.HttpClient] 自身的设置决定。
func (x *Client) Download(url string) ([]byte, error) {
	r, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errx.Wrap(fmt.Sprintf("download %q", url), err)
	}

	body, status, err := x.do(r, 0)
	if err != nil {
		return nil, errx.Wrap(fmt.Sprintf("download %q", url), err)
	}

	if status < 200 || status > 299 {
		return nil, fmt.Errorf("download %q: unexpected status %d", url, status)
	}

	return body, nil
}

// 发送请求并读取整个 body 。 timeout 覆盖从发送到 body 读取完毕的整个过程，为 0 时不设置。
func (x *Client) do(r *http.Request, timeout time.Duration) (body []byte, status int, err error) {
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	response, err := x.httpClient.Do(r)
	if err != nil {
		return
	}
	defer response.Body.Close()

	body, err = io.ReadAll(response.Body)
	status = response.StatusCode
	return
}
