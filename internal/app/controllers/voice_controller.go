package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"dingdong-http-service/internal/app/middleware"
	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/pkg/logger"
	"dingdong-http-service/pkg/twiml"

	"github.com/gin-gonic/gin"
)

// 语音路由路径常量，Twilio侧的webhook配置指向这些路径
const (
	ActivateSuitePath         = "/voice/activate-suite"
	ActivateSuiteCallbackPath = "/voice/activate-suite/callback"
	HoldMusicURL              = "http://twimlets.com/holdmusic?Bucket=com.twilio.music.classical"
)

// InterfaceVoiceController 定义语音路由控制器接口
type InterfaceVoiceController interface {
	Entry()
	Unlock()
	PartialSpeech()
	Dial()
	Join()
	Activate()
	ActivateCallback()
}

// VoiceController 处理Twilio语音webhook回调，驱动呼叫路由状态机。
// 每个回调是独立的无状态请求，状态只存在于Buzz行中
type VoiceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVoiceController 创建一个新的语音路由控制器
func NewVoiceController(ctx *gin.Context, container *container.ServiceContainer) *VoiceController {
	return &VoiceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleVoiceFunc 返回一个处理语音回调的Gin处理函数
func HandleVoiceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVoiceController(ctx, container)

		switch method {
		case "entry":
			controller.Entry()
		case "unlock":
			controller.Unlock()
		case "partialSpeech":
			controller.PartialSpeech()
		case "dial":
			controller.Dial()
		case "join":
			controller.Join()
		case "activate":
			controller.Activate()
		case "activateCallback":
			controller.ActivateCallback()
		default:
			ctx.Status(http.StatusNotFound)
		}
	}
}

func (c *VoiceController) buzzService() services.InterfaceBuzzService {
	return c.Container.GetService("buzz").(services.InterfaceBuzzService)
}

func (c *VoiceController) twilioService() services.InterfaceTwilioService {
	return c.Container.GetService("twilio").(services.InterfaceTwilioService)
}

func (c *VoiceController) config() *config.Config {
	return c.Container.GetService("config").(*config.Config)
}

// respond 渲染TwiML文档返回给Twilio
func (c *VoiceController) respond(resp *twiml.Response) {
	doc, err := resp.Render()
	if err != nil {
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	c.Ctx.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(doc))
}

// dialPath 返回指定Buzz的dial回调路径
func dialPath(buzzID uint) string {
	return fmt.Sprintf("/voice/buzz/%d/dial", buzzID)
}

// queueName 一通呼叫专属的等待队列名
func queueName(buzz *models.Buzz) string {
	return fmt.Sprintf("buzz-%d", buzz.ID)
}

// 1. Entry 入口状态：识别主叫门禁和被叫线路对应的套房，
// 创建Buzz后下发gather指令收集按键或语音
func (c *VoiceController) Entry() {
	from := c.Ctx.PostForm("From")
	to := c.Ctx.PostForm("To")
	callSid := c.Ctx.PostForm("CallSid")

	buzzService := c.buzzService()

	buzzer, err := buzzService.GetBuzzerByPhoneNumber(from)
	if err != nil {
		logger.Error("查找门禁失败 from=%s: %v", from, err)
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	if buzzer == nil {
		// 未注册的门禁，进入激活流程，不创建Buzz
		c.Ctx.Redirect(http.StatusFound, ActivateSuitePath)
		return
	}

	line, err := buzzService.GetLineByPhoneNumber(to)
	if err != nil {
		logger.Error("查找线路失败 to=%s: %v", to, err)
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}

	suite, err := buzzService.FindSuiteForLineAndBuzzer(line.ID, buzzer.ID)
	if err != nil {
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	if suite == nil {
		c.Ctx.Redirect(http.StatusFound, ActivateSuitePath)
		return
	}

	// owner列表（语音识别提示词）和Buzz创建并发执行
	var (
		owners    []models.PersonSuite
		buzz      *models.Buzz
		ownersErr error
		buzzErr   error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		owners, ownersErr = buzzService.GetSuiteOwners(suite.ID)
	}()
	go func() {
		defer wg.Done()
		buzz, buzzErr = buzzService.CreateBuzz(callSid, suite)
	}()
	wg.Wait()

	if buzzErr != nil {
		logger.Error("创建Buzz失败 call_sid=%s: %v", callSid, buzzErr)
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", buzzErr)
		return
	}
	if ownersErr != nil {
		logger.Error("查询套房owner失败 suite_id=%d: %v", suite.ID, ownersErr)
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", ownersErr)
		return
	}

	resp := twiml.New()
	gather := resp.Gather(&twiml.Gather{
		Input:                 "dtmf speech",
		NumDigits:             4,
		Timeout:               10,
		SpeechTimeout:         "auto",
		Action:                fmt.Sprintf("/voice/buzz/%d/unlock", buzz.ID),
		Hints:                 services.BuildHints(owners),
		PartialResultCallback: fmt.Sprintf("/voice/buzz/%d/speach", buzz.ID),
	})
	gather.Say("Say the name of the person you are trying to see or enter an unlock code")
	c.respond(resp)
}

// 2. Unlock 输入收集结果：按键走回读占位逻辑，语音走姓名匹配。
// 匹配唯一时记录并转入Dial状态；无匹配或歧义不做任何动作，
// 由Twilio侧的超时行为决定是否重新提示
func (c *VoiceController) Unlock() {
	buzz, ok := middleware.BuzzFromContext(c.Ctx)
	if !ok {
		c.Ctx.Status(http.StatusUnauthorized)
		return
	}
	blog := logger.NewBuzzLogger(buzz.CallSid, buzz.ID, buzz.SuiteID)

	digits := c.Ctx.PostForm("Digits")
	speech := c.Ctx.PostForm("SpeechResult")

	resp := twiml.New()
	if digits != "" {
		// 开锁码验证尚未实现，仅回读按键
		resp.Say("You entered code " + strings.Join(strings.Split(digits, ""), " "))
	} else if speech != "" {
		blog.Info("语音识别结果: %s", speech)
		owners, err := c.buzzService().GetSuiteOwners(buzz.SuiteID)
		if err != nil {
			blog.Error("查询owner失败: %v", err)
			c.respond(resp)
			return
		}
		match := services.MatchOwner(speech, owners)
		if match != nil {
			blog.Info("匹配到住户 person_suite_id=%d", match.ID)
			if !buzz.HasMatch() {
				if _, err := c.buzzService().RecordMatch(buzz, match, models.MatchTypeSpeech); err != nil {
					blog.Error("记录匹配失败: %v", err)
					c.respond(resp)
					return
				}
			}
			resp.Redirect(dialPath(buzz.ID))
		}
	}
	c.respond(resp)
}

// 3. PartialSpeech 部分语音结果，最终结果之前可能到达零次或多次，
// 也可能与Unlock乱序。已有匹配直接no-op；匹配成功时通过REST接口
// 把进行中的通话重定向到Dial——部分结果在gather同步响应之外到达，
// 这是唯一异步改写活动通话的路径
func (c *VoiceController) PartialSpeech() {
	buzz, ok := middleware.BuzzFromContext(c.Ctx)
	if !ok {
		c.Ctx.Status(http.StatusUnauthorized)
		return
	}
	blog := logger.NewBuzzLogger(buzz.CallSid, buzz.ID, buzz.SuiteID)

	text := c.Ctx.PostForm("UnstableSpeechResult")
	blog.Info("部分语音结果: %s", text)

	if buzz.HasMatch() {
		blog.Info("已有匹配，忽略部分语音结果")
		c.Ctx.Status(http.StatusOK)
		return
	}

	owners, err := c.buzzService().GetSuiteOwners(buzz.SuiteID)
	if err != nil {
		blog.Error("查询owner失败: %v", err)
		c.Ctx.Status(http.StatusOK)
		return
	}

	match := services.MatchOwner(text, owners)
	if match == nil {
		c.Ctx.Status(http.StatusOK)
		return
	}

	recorded, err := c.buzzService().RecordMatch(buzz, match, models.MatchTypeSpeech)
	if err != nil {
		blog.Error("记录匹配失败: %v", err)
		c.Ctx.Status(http.StatusOK)
		return
	}
	if recorded {
		dialURL := "https://" + c.config().PublicHost + dialPath(buzz.ID)
		if err := c.twilioService().RedirectCall(buzz.CallSid, dialURL); err != nil {
			blog.Error("重定向通话失败: %v", err)
		}
	}
	c.Ctx.Status(http.StatusOK)
}

// 4. Dial 匹配完成：把主叫放入专属等待队列，同时外呼被匹配住户，
// 接听回调指向Join。没有匹配或匹配住户没有电话号码属于
// 本通呼叫不可恢复的错误
func (c *VoiceController) Dial() {
	buzz, ok := middleware.BuzzFromContext(c.Ctx)
	if !ok {
		c.Ctx.Status(http.StatusUnauthorized)
		return
	}
	blog := logger.NewBuzzLogger(buzz.CallSid, buzz.ID, buzz.SuiteID)

	if buzz.Match == nil || buzz.Match.Person == nil {
		blog.Error("Dial状态但Buzz没有匹配住户")
		c.Ctx.String(http.StatusInternalServerError, "Error: buzz has no match")
		return
	}
	person := buzz.Match.Person
	if person.PhoneNumber == nil || *person.PhoneNumber == "" {
		blog.Error("匹配住户没有电话号码 person_id=%d", person.ID)
		c.Ctx.String(http.StatusInternalServerError, "Error: matched person has no phone number")
		return
	}

	answerURL := "https://" + c.config().PublicHost + fmt.Sprintf("/voice/buzz/%d/join", buzz.ID)
	if _, err := c.twilioService().Dial(answerURL, *person.PhoneNumber); err != nil {
		blog.Error("外呼失败: %v", err)
		c.Ctx.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}

	resp := twiml.New()
	resp.Say("Connecting")
	resp.Enqueue(queueName(buzz), HoldMusicURL)
	c.respond(resp)
}

// 5. Join 被叫接听，接入与主叫相同的命名队列完成桥接
func (c *VoiceController) Join() {
	buzz, ok := middleware.BuzzFromContext(c.Ctx)
	if !ok {
		c.Ctx.Status(http.StatusUnauthorized)
		return
	}

	resp := twiml.New()
	resp.DialQueue(queueName(buzz))
	c.respond(resp)
}

// 6. Activate 激活提示：收集5位激活码
func (c *VoiceController) Activate() {
	resp := twiml.New()
	gather := resp.Gather(&twiml.Gather{
		Input:     "dtmf",
		NumDigits: 5,
		Timeout:   10,
		Action:    ActivateSuiteCallbackPath,
	})
	gather.Say("This number is not yet activated. Enter your activation code to complete setup.")
	c.respond(resp)
}

// 7. ActivateCallback 激活码回调：码有效则原子地清空激活码并
// 把主叫号码绑定到门禁；无效则提示后重新进入激活流程
func (c *VoiceController) ActivateCallback() {
	activationCode := c.Ctx.PostForm("Digits")
	from := c.Ctx.PostForm("From")

	resp := twiml.New()
	resp.Say("You entered " + strings.Join(strings.Split(activationCode, ""), " "))

	suite, err := c.buzzService().ActivateSuite(activationCode, from)
	if err != nil {
		logger.Error("激活套房失败 code=%s: %v", activationCode, err)
		c.Ctx.Status(http.StatusInternalServerError)
		return
	}
	if suite == nil {
		resp.Say("Could not find match")
		resp.Redirect(ActivateSuitePath)
	} else {
		logger.Info("套房已激活 suite_id=%d buzzer_id=%d", suite.ID, suite.BuzzerID)
		resp.Say("Activated suite")
	}
	c.respond(resp)
}
