/*
tuya 实现涂鸦云（Tuya Cloud）开放 API 的客户端，包括请求签名、 access token 的获取和错误码的识别。

当前仅支持 GET 请求（空 body ）。

# 请求头

每个请求携带下列 HTTP 头，名称为小写，按原样发送：
  - client_id 开发者的 Access ID 。
  - sign 基于请求内容和 client secret 生成的签名。详见签名算法节。
  - sign_method 签名算法，固定为 HMAC-SHA256 。
  - t 13 位的毫秒级时间戳。
  - lang 语言，固定为 en 。
  - nonce 每个请求单独生成的 UUID ，32 位小写 HEX 格式，不含连字符。
  - access_token 仅在访问业务接口时携带；获取 token 的请求不带此头。

# 签名算法

签名使用 HMAC-SHA256 算法，以 client secret 为密钥，对待签名串进行哈希计算，结果为大写的 HEX 字符串。待签名串格式为：

	{client_id}{access_token}{t}{nonce}GET
	{CONTENT_SHA256}
	{HEADERS}
	{URL}

说明：
  - 第一行的各部分紧密拼接，没有分隔符。获取 token 时 access_token 部分为空字符串。
  - CONTENT_SHA256 是 body 的 SHA256 ，由于 body 总是空的，固定为 [EmptyBodyHash] 。
  - HEADERS 是参与签名的自定义头（ Optional_Signature_key ），当前不支持，总是空字符串。
  - URL 是请求的路径，包含 query string ，如 /v1.0/token?grant_type=1 。

# 错误码

接口返回 success=false 时，根据 code 字段返回 [*CloudError] ，对应关系见 [ErrorKind] 。
无法识别的错误码归为 [ErrorKind_Unknown] ，并保留原始的返回内容。
网络错误、超时及 JSON 格式错误不做归类，原样（包装后）返回。

# 例子

	client := tuya.NewClient(tuya.ClientOp{
		BaseUrl:      tuya.BaseUrl_CentralEurope,
		ClientId:     "my_client_id",
		ClientSecret: "my_client_secret",
	})

	res, err := client.Request("/v1.0/users/sweepers/file/my_device/realtime-map")

[Request] 每次调用都会重新获取 access token ，不做缓存。
*/
package tuya
