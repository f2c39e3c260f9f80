package tuya

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

/* 当前文件提供签名算法的实现。 */

const (
	// EmptyBodyHash 是空 body 的 SHA256 ，小写 HEX 格式。
	EmptyBodyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// SignMethod 是 sign_method 头的值。
	SignMethod = "HMAC-SHA256"

	// Lang 是 lang 头的值。
	Lang = "en"
)

// 请求头的名称。涂鸦云要求小写，发送时不做 [http.CanonicalHeaderKey] 转换。
const (
	HttpHeaderClientId    = "client_id"
	HttpHeaderSign        = "sign"
	HttpHeaderSignMethod  = "sign_method"
	HttpHeaderTimestamp   = "t"
	HttpHeaderLang        = "lang"
	HttpHeaderNonce       = "nonce"
	HttpHeaderAccessToken = "access_token"
)

// BuildStringToSign 构建待签名串，格式见包文档。
//   - accessToken 为空时表示不带 token ，如获取 token 的请求。
//   - endpoint 是请求的路径，包含 query string 。
func BuildStringToSign(clientId, accessToken, timestamp, nonce, endpoint string) string {
	b := new(strings.Builder)
	b.WriteString(clientId)
	b.WriteString(accessToken)
	b.WriteString(timestamp)
	b.WriteString(nonce)

	// METHOD
	b.WriteString("GET")
	b.WriteByte('\n')

	// CONTENT_SHA256
	b.WriteString(EmptyBodyHash)
	b.WriteByte('\n')

	// HEADERS ，不支持 Optional_Signature_key ，总是空的。
	b.WriteByte('\n')

	// URL
	b.WriteString(endpoint)

	return b.String()
}

// HmacSha256 计算 hmac-sha256 ，返回大写的 HEX 格式。
func HmacSha256(secret, data []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	hash := hex.EncodeToString(h.Sum(nil))
	return strings.ToUpper(hash)
}

// Sign 计算签名。结果总是 64 位大写的 HEX 字符串。
//   - clientId 开发者的 Access ID 。
//   - secret HMAC-SHA256 的密钥，使用 UTF-8 字符集。
//   - endpoint 请求的路径，包含 query string 。
//   - timestamp 13 位的毫秒级时间戳，和 t 头的值一致。
//   - nonce 和 nonce 头的值一致。
//   - accessToken 为空时表示不带 token 。
func Sign(clientId, secret, endpoint, timestamp, nonce, accessToken string) string {
	data := BuildStringToSign(clientId, accessToken, timestamp, nonce, endpoint)
	return HmacSha256([]byte(secret), []byte(data))
}

// NewNonce 生成一个随机的 UUID （ v4 ），返回 32 位小写 HEX 格式，不含连字符。
func NewNonce() string {
	var b [16]byte
	_, err := rand.Read(b[:])
	if err != nil {
		// crypto/rand 不可用时无法继续生成安全的随机数。
		panic(err)
	}

	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return hex.EncodeToString(b[:])
}

// Timestamp 返回给定时间的 13 位毫秒级时间戳。
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
