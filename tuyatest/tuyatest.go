// tuyatest 包提供用于测试 tuya 和 vacuum 包的辅助类型。
package tuyatest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cmstar/go-tuyavacuum/tuya"
	"github.com/labstack/echo/v4"
)

// 模拟服务端使用的错误码。
const (
	ErrorCode_SignInvalid     = 1004
	ErrorCode_ClientIdInvalid = 1005
	ErrorCode_TokenInvalid    = 1010
	ErrorCode_NoPermission    = 1106
	ErrorCode_ParamIllegal    = 1109
)

// ServerOp 用于初始化 [Server] 。
type ServerOp struct {
	ClientId     string // 服务端接受的 client_id 。
	ClientSecret string // 服务端用于校验签名的 secret 。
	AccessToken  string // 服务端发放的 access token 。若为空，使用 "test_token" 。
}

// Server 是一个模拟的涂鸦云，基于 [httptest.Server] 和 echo 实现。支持：
//   - GET /v1.0/token?grant_type=1 发放 access token 。
//   - GET /v1.0/users/sweepers/file/:device/realtime-map 返回通过 [Server.SetMapResources] 设置的地图文件列表。
//   - GET /files/:name 返回通过 [Server.SetFile] 设置的文件内容，不校验签名。
//
// 前两个接口会重新计算并校验签名，校验失败时返回对应的错误码。
type Server struct {
	*httptest.Server

	op ServerOp

	mu            sync.Mutex
	maps          map[string][]tuya.MapResource
	files         map[string][]byte
	headers       []http.Header
	tokenRequests int
}

// NewServer 创建并启动一个 [Server] 。使用完毕后需调用 Close 。
func NewServer(op ServerOp) *Server {
	if op.AccessToken == "" {
		op.AccessToken = "test_token"
	}

	s := &Server{
		op:    op,
		maps:  make(map[string][]tuya.MapResource),
		files: make(map[string][]byte),
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/v1.0/token", s.handleToken, s.verifySign)
	e.GET("/v1.0/users/sweepers/file/:device/realtime-map", s.handleRealtimeMap, s.verifySign, s.verifyToken)
	e.GET("/files/:name", s.handleFile)

	s.Server = httptest.NewServer(e)
	return s
}

// AccessToken 返回服务端发放的 access token 。
func (s *Server) AccessToken() string {
	return s.op.AccessToken
}

// SetMapResources 设置设备的实时地图文件列表。未设置的设备，接口返回 [ErrorCode_NoPermission] 。
func (s *Server) SetMapResources(deviceId string, resources ...tuya.MapResource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[deviceId] = resources
}

// SetFile 设置一个可下载的文件，返回其 URL 。
func (s *Server) SetFile(name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return s.FileUrl(name)
}

// FileUrl 返回通过 [Server.SetFile] 设置的文件的 URL 。
func (s *Server) FileUrl(name string) string {
	return s.URL + "/files/" + name
}

// TokenRequests 返回 token 接口被成功调用的次数。
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// Headers 按顺序返回签名接口收到的请求头，不包括文件下载的请求。
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]http.Header, len(s.headers))
	for i, h := range s.headers {
		res[i] = h.Clone()
	}
	return res
}

func (s *Server) verifySign(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()

		s.mu.Lock()
		s.headers = append(s.headers, r.Header.Clone())
		s.mu.Unlock()

		h := r.Header
		if h.Get(tuya.HttpHeaderClientId) != s.op.ClientId {
			return fail(c, ErrorCode_ClientIdInvalid, "clientId is invalid")
		}

		if h.Get(tuya.HttpHeaderSignMethod) != tuya.SignMethod {
			return fail(c, ErrorCode_ParamIllegal, "sign_method is illegal")
		}

		want := tuya.Sign(
			s.op.ClientId,
			s.op.ClientSecret,
			r.RequestURI,
			h.Get(tuya.HttpHeaderTimestamp),
			h.Get(tuya.HttpHeaderNonce),
			h.Get(tuya.HttpHeaderAccessToken),
		)
		if h.Get(tuya.HttpHeaderSign) != want {
			return fail(c, ErrorCode_SignInvalid, "sign invalid")
		}

		return next(c)
	}
}

func (s *Server) verifyToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get(tuya.HttpHeaderAccessToken) != s.op.AccessToken {
			return fail(c, ErrorCode_TokenInvalid, "token invalid")
		}
		return next(c)
	}
}

func (s *Server) handleToken(c echo.Context) error {
	if c.QueryParam("grant_type") != "1" {
		return fail(c, ErrorCode_ParamIllegal, "param is illegal")
	}

	s.mu.Lock()
	s.tokenRequests++
	s.mu.Unlock()

	return succeed(c, map[string]any{
		"access_token":  s.op.AccessToken,
		"expire_time":   7200,
		"refresh_token": "refresh_" + s.op.AccessToken,
		"uid":           "test_uid",
	})
}

func (s *Server) handleRealtimeMap(c echo.Context) error {
	s.mu.Lock()
	resources, ok := s.maps[c.Param("device")]
	s.mu.Unlock()

	if !ok {
		return fail(c, ErrorCode_NoPermission, "permission deny")
	}

	result := make([]map[string]any, 0, len(resources))
	for _, v := range resources {
		result = append(result, map[string]any{
			"map_type": int(v.MapType),
			"map_url":  v.MapUrl,
		})
	}
	return succeed(c, result)
}

func (s *Server) handleFile(c echo.Context) error {
	s.mu.Lock()
	data, ok := s.files[c.Param("name")]
	s.mu.Unlock()

	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func succeed(c echo.Context, result any) error {
	return c.JSON(http.StatusOK, tuya.Envelope{
		Success: true,
		Result:  result,
		T:       time.Now().UnixMilli(),
		Tid:     "test_tid",
	})
}

// 涂鸦云在出错时也返回 200 ，错误体现在 success 和 code 字段。
func fail(c echo.Context, code int, msg string) error {
	return c.JSON(http.StatusOK, tuya.Envelope{
		Success: false,
		Code:    code,
		Msg:     msg,
		T:       time.Now().UnixMilli(),
	})
}
