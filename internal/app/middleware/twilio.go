package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/url"
	"sort"

	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SignatureHeader Twilio在每个webhook请求上携带的签名头
const SignatureHeader = "X-Twilio-Signature"

// ValidateSignature 校验签名：对规范URL追加按键名排序的表单参数后
// 做HMAC-SHA1，与签名头做常量时间比较
func ValidateSignature(authToken, signature, requestURL string, params url.Values) bool {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := requestURL
	for _, key := range keys {
		for _, value := range params[key] {
			payload += key + value
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// ValidateBody 校验请求体的SHA256与URL中的bodySHA256参数一致
func ValidateBody(body []byte, expectedHash string) bool {
	sum := sha256.Sum256(body)
	actual := hex.EncodeToString(sum[:])
	return hmac.Equal([]byte(actual), []byte(expectedHash))
}

// requestURL 重建Twilio侧配置的完整webhook URL
func requestURL(c *gin.Context) string {
	scheme := c.Request.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if c.Request.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

// TwilioSignature 校验请求确实来自Twilio。
// 校验失败立即403终止，绝不进入业务处理；
// 只有显式配置TWILIO_SKIP_VERIFY才跳过，且每次都记录警告
func TwilioSignature(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TwilioSkipVerify {
			logger.Warning("Twilio签名校验已被显式关闭(TWILIO_SKIP_VERIFY)，仅限本地调试使用")
			c.Next()
			return
		}

		signature := c.GetHeader(SignatureHeader)
		if signature == "" {
			c.String(403, "Twilio Request Validation Failed.")
			c.Abort()
			return
		}

		// 读取原始请求体并还原，后续处理器仍可解析表单
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(403, "Twilio Request Validation Failed.")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		fullURL := requestURL(c)
		valid := false
		if bodyHash := c.Query("bodySHA256"); bodyHash != "" {
			valid = ValidateSignature(cfg.TwilioAuthToken, signature, fullURL, nil) &&
				ValidateBody(body, bodyHash)
		} else {
			params, parseErr := url.ParseQuery(string(body))
			if parseErr != nil {
				params = url.Values{}
			}
			valid = ValidateSignature(cfg.TwilioAuthToken, signature, fullURL, params)
		}

		// 签名消费了请求体，重新还原给业务处理器
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		if !valid {
			logger.Warning("Twilio签名校验失败: %s", fullURL)
			c.String(403, "Twilio Request Validation Failed.")
			c.Abort()
			return
		}

		c.Next()
	}
}
