package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"dingdong-http-service/internal/app/middleware"
	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/internal/infrastructure/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeBuzzService 呼叫会话服务替身，记录调用供断言
type fakeBuzzService struct {
	mu sync.Mutex

	buzzer *models.Buzzer
	line   *models.Line
	suite  *models.Suite
	buzz   *models.Buzz
	owners []models.PersonSuite

	recordResult bool
	recordCalls  int
	createCalls  int
	activated    *models.Suite
	callEnds     []string
}

func (f *fakeBuzzService) GetLineByPhoneNumber(string) (*models.Line, error) {
	if f.line == nil {
		return nil, errors.New("线路不存在")
	}
	return f.line, nil
}

func (f *fakeBuzzService) GetBuzzerByPhoneNumber(string) (*models.Buzzer, error) {
	return f.buzzer, nil
}

func (f *fakeBuzzService) FindSuiteForLineAndBuzzer(uint, uint) (*models.Suite, error) {
	return f.suite, nil
}

func (f *fakeBuzzService) FindAvailableLineForBuzzer(uint) (*models.Line, error) {
	return f.line, nil
}

func (f *fakeBuzzService) CreateBuzz(callSid string, suite *models.Suite) (*models.Buzz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return &models.Buzz{
		ID:        7,
		CallSid:   callSid,
		SuiteID:   suite.ID,
		CallStart: time.Now(),
		Suite:     suite,
	}, nil
}

func (f *fakeBuzzService) GetBuzzByID(uint) (*models.Buzz, error) {
	if f.buzz == nil {
		return nil, errors.New("呼叫记录不存在")
	}
	return f.buzz, nil
}

func (f *fakeBuzzService) GetSuiteOwners(uint) ([]models.PersonSuite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owners, nil
}

func (f *fakeBuzzService) RecordMatch(buzz *models.Buzz, match *models.PersonSuite, matchType models.MatchType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCalls++
	if f.recordResult {
		id := match.ID
		buzz.MatchID = &id
		buzz.MatchType = &matchType
		buzz.Match = match
	}
	return f.recordResult, nil
}

func (f *fakeBuzzService) RecordCallEnd(callSid string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callEnds = append(f.callEnds, callSid)
	return nil
}

func (f *fakeBuzzService) ActivateSuite(string, string) (*models.Suite, error) {
	return f.activated, nil
}

// fakeTwilioService REST能力替身
type fakeTwilioService struct {
	mu        sync.Mutex
	dialURLs  []string
	dialTos   []string
	redirects []string
}

func (f *fakeTwilioService) Dial(answerURL, to string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialURLs = append(f.dialURLs, answerURL)
	f.dialTos = append(f.dialTos, to)
	return "CA-outbound", nil
}

func (f *fakeTwilioService) RedirectCall(callSid, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirects = append(f.redirects, url)
	return nil
}

func (f *fakeTwilioService) SendSMS(string, string) error { return nil }

func (f *fakeTwilioService) LookupNumber(string) (string, string, error) { return "", "", nil }

// fakeRedisService 通话状态缓存替身
type fakeRedisService struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeRedisService() *fakeRedisService {
	return &fakeRedisService{statuses: make(map[string]string)}
}

func (f *fakeRedisService) Set(string, interface{}, time.Duration) error { return nil }
func (f *fakeRedisService) Get(string, interface{}) error                { return nil }
func (f *fakeRedisService) Delete(string) error                          { return nil }

func (f *fakeRedisService) SetCallStatus(callSid, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[callSid] = status
	return nil
}

func (f *fakeRedisService) GetCallStatus(callSid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[callSid], nil
}

func (f *fakeRedisService) Ping() error { return nil }

// newTestContainer 基于sqlmock的gorm句柄构造容器并注入替身
func newTestContainer(t *testing.T, fb *fakeBuzzService, ft *fakeTwilioService, fr *fakeRedisService) *container.ServiceContainer {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	cfg := &config.Config{
		PublicHost:       "dingdong.example.com",
		TwilioSkipVerify: true,
	}

	c := container.NewServiceContainer(db, cfg)
	c.SetService("buzz", fb)
	c.SetService("twilio", ft)
	c.SetService("redis", fr)
	return c
}

// newVoiceTestRouter 搭建与生产一致的语音路由（跳过签名校验）
func newVoiceTestRouter(c *container.ServiceContainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	voice := r.Group("/voice")
	voice.Use(middleware.TwiML())
	voice.POST("", HandleVoiceFunc(c, "entry"))
	voice.GET("/activate-suite", HandleVoiceFunc(c, "activate"))
	voice.POST("/activate-suite/callback", HandleVoiceFunc(c, "activateCallback"))

	buzzGroup := voice.Group("/buzz/:buzzId")
	buzzGroup.Use(middleware.LoadBuzz(c))
	buzzGroup.POST("/unlock", HandleVoiceFunc(c, "unlock"))
	buzzGroup.POST("/speach", HandleVoiceFunc(c, "partialSpeech"))
	buzzGroup.POST("/dial", HandleVoiceFunc(c, "dial"))
	buzzGroup.POST("/join", HandleVoiceFunc(c, "join"))

	r.POST("/status", HandleStatusFunc(c, "callStatus"))
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func janeAndJohn() []models.PersonSuite {
	phone := "+16045550123"
	return []models.PersonSuite{
		{ID: 5, Role: models.RoleOwner, Person: &models.Person{ID: 5, FirstName: "Jane", LastName: "Smith", PhoneNumber: &phone}},
		{ID: 6, Role: models.RoleOwner, Person: &models.Person{ID: 6, FirstName: "John", LastName: "Smith"}},
	}
}

func testSuite() *models.Suite {
	return &models.Suite{ID: 9, Unit: "701", BuzzerID: 2, LineID: 3}
}

func TestEntryUnknownBuzzerRedirectsToActivation(t *testing.T) {
	fb := &fakeBuzzService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice", url.Values{
		"From":    {"+16045550100"},
		"To":      {"+16045550101"},
		"CallSid": {"CA0001"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, ActivateSuitePath, w.Header().Get("Location"))
	// 未知门禁不产生Buzz记录
	assert.Equal(t, 0, fb.createCalls)
}

func TestEntryRendersGather(t *testing.T) {
	phone := "+16045550100"
	fb := &fakeBuzzService{
		buzzer: &models.Buzzer{ID: 2, PhoneNumber: &phone},
		line:   &models.Line{ID: 3, PhoneNumber: "+16045550101"},
		suite:  testSuite(),
		owners: janeAndJohn(),
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice", url.Values{
		"From":    {"+16045550100"},
		"To":      {"+16045550101"},
		"CallSid": {"CA0001"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/xml")
	body := w.Body.String()
	assert.Contains(t, body, `action="/voice/buzz/7/unlock"`)
	assert.Contains(t, body, `partialResultCallback="/voice/buzz/7/speach"`)
	assert.Contains(t, body, `hints="Jane Smith John Smith"`)
	assert.Contains(t, body, `numDigits="4"`)
	assert.Equal(t, 1, fb.createCalls)
}

func TestEntryUnmappedSuiteRedirectsToActivation(t *testing.T) {
	phone := "+16045550100"
	fb := &fakeBuzzService{
		buzzer: &models.Buzzer{ID: 2, PhoneNumber: &phone},
		line:   &models.Line{ID: 3},
		suite:  nil,
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice", url.Values{
		"From":    {"+16045550100"},
		"To":      {"+16045550101"},
		"CallSid": {"CA0001"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, fb.createCalls)
}

func TestUnlockDigitsEchoesCode(t *testing.T) {
	fb := &fakeBuzzService{
		buzz:   &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
		owners: janeAndJohn(),
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/unlock", url.Values{"Digits": {"1234"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You entered code 1 2 3 4")
}

func TestUnlockSpeechMatchRedirectsToDial(t *testing.T) {
	fb := &fakeBuzzService{
		buzz:         &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
		owners:       janeAndJohn(),
		recordResult: true,
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/unlock", url.Values{"SpeechResult": {"I'm here for Jane"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ">/voice/buzz/7/dial</Redirect>")
	assert.Equal(t, 1, fb.recordCalls)
}

func TestUnlockSpeechAlreadyMatchedSkipsRecord(t *testing.T) {
	matchID := uint(5)
	fb := &fakeBuzzService{
		buzz:   &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9, MatchID: &matchID},
		owners: janeAndJohn(),
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/unlock", url.Values{"SpeechResult": {"Jane"}})

	assert.Equal(t, http.StatusOK, w.Code)
	// 已匹配时不再写库，但仍然转入Dial
	assert.Equal(t, 0, fb.recordCalls)
	assert.Contains(t, w.Body.String(), ">/voice/buzz/7/dial</Redirect>")
}

func TestUnlockAmbiguousSpeechDoesNothing(t *testing.T) {
	fb := &fakeBuzzService{
		buzz:   &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
		owners: janeAndJohn(),
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	// "Smith"同时命中两个人
	w := postForm(r, "/voice/buzz/7/unlock", url.Values{"SpeechResult": {"Smith"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fb.recordCalls)
	assert.NotContains(t, w.Body.String(), "<Redirect")
}

func TestPartialSpeechMatchRedirectsViaRest(t *testing.T) {
	fb := &fakeBuzzService{
		buzz:         &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
		owners:       janeAndJohn(),
		recordResult: true,
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/speach", url.Values{"UnstableSpeechResult": {"Jane"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fb.recordCalls)
	require.Len(t, ft.redirects, 1)
	assert.Equal(t, "https://dingdong.example.com/voice/buzz/7/dial", ft.redirects[0])
}

func TestPartialSpeechIgnoredWhenAlreadyMatched(t *testing.T) {
	matchID := uint(5)
	fb := &fakeBuzzService{
		buzz:   &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9, MatchID: &matchID},
		owners: janeAndJohn(),
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/speach", url.Values{"UnstableSpeechResult": {"Jane"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fb.recordCalls)
	assert.Empty(t, ft.redirects)
}

func TestPartialSpeechLostRaceDoesNotRedirect(t *testing.T) {
	fb := &fakeBuzzService{
		buzz:         &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
		owners:       janeAndJohn(),
		recordResult: false, // 条件更新没有命中：最终结果先写入了
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/speach", url.Values{"UnstableSpeechResult": {"Jane"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fb.recordCalls)
	assert.Empty(t, ft.redirects)
}

func TestDialEnqueuesCallerAndDialsOut(t *testing.T) {
	owners := janeAndJohn()
	matchID := uint(5)
	fb := &fakeBuzzService{
		buzz: &models.Buzz{
			ID: 7, CallSid: "CA0001", SuiteID: 9,
			MatchID: &matchID, Match: &owners[0],
		},
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/dial", url.Values{})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<Say>Connecting</Say>")
	assert.Contains(t, body, ">buzz-7</Enqueue>")
	require.Len(t, ft.dialURLs, 1)
	assert.Equal(t, "https://dingdong.example.com/voice/buzz/7/join", ft.dialURLs[0])
	assert.Equal(t, "+16045550123", ft.dialTos[0])
}

func TestDialWithoutMatchFails(t *testing.T) {
	fb := &fakeBuzzService{
		buzz: &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/dial", url.Values{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, ft.dialURLs)
}

func TestDialMatchedPersonWithoutPhoneFails(t *testing.T) {
	owners := janeAndJohn()
	matchID := uint(6)
	fb := &fakeBuzzService{
		buzz: &models.Buzz{
			ID: 7, CallSid: "CA0001", SuiteID: 9,
			MatchID: &matchID, Match: &owners[1], // John没有电话号码
		},
	}
	ft := &fakeTwilioService{}
	r := newVoiceTestRouter(newTestContainer(t, fb, ft, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/dial", url.Values{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, ft.dialURLs)
}

func TestJoinDialsIntoQueue(t *testing.T) {
	fb := &fakeBuzzService{
		buzz: &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9},
	}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/7/join", url.Values{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<Dial><Queue>buzz-7</Queue></Dial>")
}

func TestLoadBuzzRejectsUnknownBuzz(t *testing.T) {
	fb := &fakeBuzzService{} // GetBuzzByID返回错误
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/buzz/999/unlock", url.Values{"Digits": {"1234"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivatePromptGathersFiveDigits(t *testing.T) {
	r := newVoiceTestRouter(newTestContainer(t, &fakeBuzzService{}, &fakeTwilioService{}, newFakeRedisService()))

	req := httptest.NewRequest(http.MethodGet, "/voice/activate-suite", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `numDigits="5"`)
	assert.Contains(t, body, `action="/voice/activate-suite/callback"`)
}

func TestActivateCallbackInvalidCode(t *testing.T) {
	fb := &fakeBuzzService{activated: nil}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/activate-suite/callback", url.Values{
		"Digits": {"99999"},
		"From":   {"+16045550100"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Could not find match")
	assert.Contains(t, body, ">"+ActivateSuitePath+"</Redirect>")
}

func TestActivateCallbackSuccess(t *testing.T) {
	fb := &fakeBuzzService{activated: testSuite()}
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, newFakeRedisService()))

	w := postForm(r, "/voice/activate-suite/callback", url.Values{
		"Digits": {"12345"},
		"From":   {"+16045550100"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "You entered 1 2 3 4 5")
	assert.Contains(t, body, "Activated suite")
	assert.NotContains(t, body, "<Redirect")
}
