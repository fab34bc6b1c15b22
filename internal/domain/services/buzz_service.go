package services

import (
	"errors"
	"time"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/pkg/logger"

	"gorm.io/gorm"
)

var (
	// ErrNoAvailableLine 当前门禁下没有可分配的线路
	ErrNoAvailableLine = errors.New("无可分配线路")
)

// InterfaceBuzzService defines the buzz session store interface.
// 一通电话跨越多个无状态webhook回调，所有协调都通过持久化的Buzz行完成
type InterfaceBuzzService interface {
	GetLineByPhoneNumber(phoneNumber string) (*models.Line, error)
	GetBuzzerByPhoneNumber(phoneNumber string) (*models.Buzzer, error)
	FindSuiteForLineAndBuzzer(lineID, buzzerID uint) (*models.Suite, error)
	FindAvailableLineForBuzzer(buzzerID uint) (*models.Line, error)
	CreateBuzz(callSid string, suite *models.Suite) (*models.Buzz, error)
	GetBuzzByID(id uint) (*models.Buzz, error)
	GetSuiteOwners(suiteID uint) ([]models.PersonSuite, error)
	RecordMatch(buzz *models.Buzz, match *models.PersonSuite, matchType models.MatchType) (bool, error)
	RecordCallEnd(callSid string, endedAt time.Time) error
	ActivateSuite(activationCode, fromNumber string) (*models.Suite, error)
}

// BuzzService 提供呼叫会话相关的服务
type BuzzService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewBuzzService 创建一个新的呼叫会话服务
func NewBuzzService(db *gorm.DB, cfg *config.Config) InterfaceBuzzService {
	return &BuzzService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetLineByPhoneNumber 根据被叫号码查找线路，无结果返回错误
func (s *BuzzService) GetLineByPhoneNumber(phoneNumber string) (*models.Line, error) {
	var line models.Line
	if err := s.DB.Where("phone_number = ?", phoneNumber).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("线路不存在")
		}
		return nil, err
	}
	return &line, nil
}

// 2 GetBuzzerByPhoneNumber 根据主叫号码查找门禁设备。
// 无结果返回 (nil, nil)，这是正常业务结果，触发激活流程
func (s *BuzzService) GetBuzzerByPhoneNumber(phoneNumber string) (*models.Buzzer, error) {
	var buzzer models.Buzzer
	if err := s.DB.Where("phone_number = ?", phoneNumber).First(&buzzer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &buzzer, nil
}

// 3 FindSuiteForLineAndBuzzer 查找关联指定线路和门禁的套房，无结果返回 (nil, nil)
func (s *BuzzService) FindSuiteForLineAndBuzzer(lineID, buzzerID uint) (*models.Suite, error) {
	var suite models.Suite
	if err := s.DB.Where("line_id = ? AND buzzer_id = ?", lineID, buzzerID).First(&suite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &suite, nil
}

// 4 FindAvailableLineForBuzzer 查找尚未绑定到该门禁下任何套房的线路，
// 保证来电的 From/To 组合在同一门禁下唯一
func (s *BuzzService) FindAvailableLineForBuzzer(buzzerID uint) (*models.Line, error) {
	var suites []models.Suite
	if err := s.DB.Where("buzzer_id = ?", buzzerID).Find(&suites).Error; err != nil {
		return nil, err
	}

	var line models.Line
	if len(suites) > 0 {
		lineIDs := make([]uint, 0, len(suites))
		for _, suite := range suites {
			lineIDs = append(lineIDs, suite.LineID)
		}
		if err := s.DB.Where("id NOT IN ?", lineIDs).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoAvailableLine
			}
			return nil, err
		}
	} else {
		if err := s.DB.First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoAvailableLine
			}
			return nil, err
		}
	}
	return &line, nil
}

// 5 CreateBuzz 为一次来电创建Buzz记录，CallSid重复时返回错误
func (s *BuzzService) CreateBuzz(callSid string, suite *models.Suite) (*models.Buzz, error) {
	buzz := models.Buzz{
		CallSid:   callSid,
		SuiteID:   suite.ID,
		CallStart: time.Now(),
	}
	if err := s.DB.Create(&buzz).Error; err != nil {
		return nil, err
	}
	buzz.Suite = suite
	return &buzz, nil
}

// 6 GetBuzzByID 根据ID加载Buzz及其关联，所有路由回调都依赖这次加载成功
func (s *BuzzService) GetBuzzByID(id uint) (*models.Buzz, error) {
	var buzz models.Buzz
	if err := s.DB.Preload("Suite").Preload("Match").Preload("Match.Person").First(&buzz, id).Error; err != nil {
		return nil, err
	}
	return &buzz, nil
}

// 7 GetSuiteOwners 查找套房下所有owner角色的关联及其住户
func (s *BuzzService) GetSuiteOwners(suiteID uint) ([]models.PersonSuite, error) {
	var owners []models.PersonSuite
	if err := s.DB.Where("suite_id = ? AND role = ?", suiteID, models.RoleOwner).
		Preload("Person").Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// 8 RecordMatch 记录匹配结果。条件更新只在match_id为空时写入，
// 关闭最终语音结果与部分语音结果之间的竞争；返回false表示已有匹配，本次为无操作
func (s *BuzzService) RecordMatch(buzz *models.Buzz, match *models.PersonSuite, matchType models.MatchType) (bool, error) {
	result := s.DB.Model(&models.Buzz{}).
		Where("id = ? AND match_id IS NULL", buzz.ID).
		Updates(map[string]interface{}{
			"match_id":   match.ID,
			"match_type": matchType,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	buzz.MatchID = &match.ID
	buzz.MatchType = &matchType
	buzz.Match = match
	return true, nil
}

// 9 RecordCallEnd 以CallSid为键写入通话结束时间。
// 状态回调可能重复到达，后写覆盖先写；找不到记录只记日志，不报错
func (s *BuzzService) RecordCallEnd(callSid string, endedAt time.Time) error {
	result := s.DB.Model(&models.Buzz{}).
		Where("call_sid = ?", callSid).
		Update("call_end", endedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warning("收到未知CallSid的状态回调: %s", callSid)
	}
	return nil
}

// 10 ActivateSuite 用激活码激活套房：清空激活码并把主叫号码绑定到门禁。
// 两步在同一事务内完成，避免留下半激活状态；激活码无效返回 (nil, nil)
func (s *BuzzService) ActivateSuite(activationCode, fromNumber string) (*models.Suite, error) {
	var suite models.Suite
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Buzzer").
			Where("activation_code = ?", activationCode).First(&suite).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Buzzer{}).
			Where("id = ?", suite.BuzzerID).
			Update("phone_number", fromNumber).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Suite{}).
			Where("id = ?", suite.ID).
			Update("activation_code", nil).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	suite.ActivationCode = nil
	if suite.Buzzer != nil {
		suite.Buzzer.PhoneNumber = &fromNumber
	}
	return &suite, nil
}
