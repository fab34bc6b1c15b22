package services

import (
	"testing"
	"time"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/infrastructure/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 基于sqlmock构造gorm句柄，服务测试不依赖真实MySQL
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newBuzzService(db *gorm.DB) InterfaceBuzzService {
	return NewBuzzService(db, &config.Config{})
}

func TestGetBuzzerByPhoneNumberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectQuery("SELECT \\* FROM `buzzers`").
		WillReturnError(gorm.ErrRecordNotFound)

	// 未登记的门禁是正常业务结果，不是错误
	buzzer, err := svc.GetBuzzerByPhoneNumber("+16045550100")
	assert.NoError(t, err)
	assert.Nil(t, buzzer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLineByPhoneNumberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectQuery("SELECT \\* FROM `lines`").
		WillReturnError(gorm.ErrRecordNotFound)

	// 被叫号码一定是我们自己的线路，查不到说明配置损坏
	line, err := svc.GetLineByPhoneNumber("+16045550101")
	assert.Error(t, err)
	assert.Nil(t, line)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSuiteForLineAndBuzzerNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectQuery("SELECT \\* FROM `suites`").
		WillReturnError(gorm.ErrRecordNotFound)

	suite, err := svc.FindSuiteForLineAndBuzzer(1, 2)
	assert.NoError(t, err)
	assert.Nil(t, suite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBuzz(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `buzzes`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	suite := &models.Suite{Unit: "701"}
	suite.ID = 9

	buzz, err := svc.CreateBuzz("CA0001", suite)
	require.NoError(t, err)
	assert.Equal(t, uint(42), buzz.ID)
	assert.Equal(t, "CA0001", buzz.CallSid)
	assert.Equal(t, uint(9), buzz.SuiteID)
	assert.False(t, buzz.CallStart.IsZero())
	assert.Same(t, suite, buzz.Suite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMatchFirstWriteWins(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `buzzes` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	buzz := &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9}
	match := &models.PersonSuite{ID: 5}

	recorded, err := svc.RecordMatch(buzz, match, models.MatchTypeSpeech)
	require.NoError(t, err)
	assert.True(t, recorded)
	require.NotNil(t, buzz.MatchID)
	assert.Equal(t, uint(5), *buzz.MatchID)
	require.NotNil(t, buzz.MatchType)
	assert.Equal(t, models.MatchTypeSpeech, *buzz.MatchType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMatchAlreadyMatchedIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	// 条件更新没有命中行：另一条回调已经写入了匹配
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `buzzes` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	buzz := &models.Buzz{ID: 7, CallSid: "CA0001", SuiteID: 9}
	match := &models.PersonSuite{ID: 5}

	recorded, err := svc.RecordMatch(buzz, match, models.MatchTypeSpeech)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Nil(t, buzz.MatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCallEndUnknownCallSid(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `buzzes` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// 未知CallSid只记日志，状态回调不报错
	err := svc.RecordCallEnd("CA-unknown", time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAvailableLineForBuzzerNoneLeft(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectQuery("SELECT \\* FROM `suites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "line_id", "buzzer_id"}).
			AddRow(1, 3, 2))
	mock.ExpectQuery("SELECT \\* FROM `lines`").
		WillReturnError(gorm.ErrRecordNotFound)

	line, err := svc.FindAvailableLineForBuzzer(2)
	assert.ErrorIs(t, err, ErrNoAvailableLine)
	assert.Nil(t, line)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAvailableLineForBuzzerFirstSuite(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	// 门禁下还没有套房时任何线路都可用
	mock.ExpectQuery("SELECT \\* FROM `suites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "line_id", "buzzer_id"}))
	mock.ExpectQuery("SELECT \\* FROM `lines`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone_number"}).
			AddRow(3, "+16045550101"))

	line, err := svc.FindAvailableLineForBuzzer(2)
	require.NoError(t, err)
	assert.Equal(t, uint(3), line.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateSuiteInvalidCode(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `suites`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	// 无效激活码是正常业务结果
	suite, err := svc.ActivateSuite("99999", "+16045550100")
	assert.NoError(t, err)
	assert.Nil(t, suite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateSuiteBindsBuzzerAndClearsCode(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newBuzzService(db)

	code := "12345"
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `suites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit", "activation_code", "buzzer_id", "line_id"}).
			AddRow(9, "701", code, 2, 3))
	mock.ExpectQuery("SELECT \\* FROM `buzzers`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "place_id"}).
			AddRow(2, "place-1"))
	mock.ExpectExec("UPDATE `buzzers` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `suites` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	suite, err := svc.ActivateSuite(code, "+16045550100")
	require.NoError(t, err)
	require.NotNil(t, suite)
	assert.Nil(t, suite.ActivationCode)
	require.NotNil(t, suite.Buzzer)
	require.NotNil(t, suite.Buzzer.PhoneNumber)
	assert.Equal(t, "+16045550100", *suite.Buzzer.PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
