package services

import (
	"fmt"
	"strings"
	"time"

	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// InterfaceTwilioService defines the Twilio REST capability interface:
// 发起外呼、重定向进行中的通话、发送短信、号码归属查询
type InterfaceTwilioService interface {
	Dial(answerURL, to string) (string, error)
	RedirectCall(callSid, url string) error
	SendSMS(to, body string) error
	LookupNumber(phoneNumber string) (firstName, lastName string, err error)
}

// TwilioService 封装Twilio REST API调用
type TwilioService struct {
	Config *config.Config
	Client *resty.Client
}

// twilioCallResponse Twilio呼叫/短信接口的响应子集
type twilioCallResponse struct {
	Sid     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// twilioLookupResponse 号码查询接口的响应子集
type twilioLookupResponse struct {
	CallerName *struct {
		CallerName string `json:"caller_name"`
	} `json:"caller_name"`
}

// NewTwilioService 创建一个新的Twilio服务
func NewTwilioService(cfg *config.Config) InterfaceTwilioService {
	client := resty.New().
		SetBaseURL("https://api.twilio.com/2010-04-01/Accounts/"+cfg.TwilioAccountSID).
		SetBasicAuth(cfg.TwilioAccountSID, cfg.TwilioAuthToken).
		SetTimeout(10 * time.Second)

	return &TwilioService{
		Config: cfg,
		Client: client,
	}
}

// 1 Dial 向指定号码发起外呼，接通后Twilio回调answerURL获取后续指令
func (s *TwilioService) Dial(answerURL, to string) (string, error) {
	var result twilioCallResponse
	resp, err := s.Client.R().
		SetFormData(map[string]string{
			"Url":    answerURL,
			"Method": "POST",
			"From":   s.Config.TwilioDefaultNumber,
			"To":     to,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/Calls.json")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("twilio外呼失败(%d): %s", resp.StatusCode(), result.Message)
	}

	logger.Info("已发起外呼 to=%s call_sid=%s", to, result.Sid)
	return result.Sid, nil
}

// 2 RedirectCall 把一通进行中的通话重定向到新的webhook。
// 这是部分语音结果路径专用的能力：部分结果在gather同步响应之外到达，
// 只能通过REST接口改写活动通话
func (s *TwilioService) RedirectCall(callSid, url string) error {
	var result twilioCallResponse
	resp, err := s.Client.R().
		SetFormData(map[string]string{
			"Url":    url,
			"Method": "POST",
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/Calls/%s.json", callSid))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("twilio重定向失败(%d): %s", resp.StatusCode(), result.Message)
	}
	return nil
}

// 3 SendSMS 从默认号码发送短信
func (s *TwilioService) SendSMS(to, body string) error {
	var result twilioCallResponse
	resp, err := s.Client.R().
		SetFormData(map[string]string{
			"From": s.Config.TwilioDefaultNumber,
			"To":   to,
			"Body": body,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/Messages.json")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("twilio短信发送失败(%d): %s", resp.StatusCode(), result.Message)
	}
	return nil
}

// 4 LookupNumber 查询号码机主姓名，用于新住户的姓名预填充。
// 查询接口在独立域名上，使用绝对URL绕过BaseURL
func (s *TwilioService) LookupNumber(phoneNumber string) (string, string, error) {
	var result twilioLookupResponse
	resp, err := s.Client.R().
		SetQueryParam("Type", "caller-name").
		SetResult(&result).
		Get("https://lookups.twilio.com/v1/PhoneNumbers/" + phoneNumber)
	if err != nil {
		return "", "", err
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("twilio号码查询失败(%d)", resp.StatusCode())
	}

	if result.CallerName == nil || result.CallerName.CallerName == "" {
		return "", "", nil
	}
	parts := strings.SplitN(result.CallerName.CallerName, " ", 2)
	firstName := parts[0]
	lastName := ""
	if len(parts) > 1 {
		lastName = parts[1]
	}
	return firstName, lastName, nil
}
