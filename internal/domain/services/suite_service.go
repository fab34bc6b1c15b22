package services

import (
	"errors"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/utils"

	"gorm.io/gorm"
)

// InterfaceSuiteService 定义套房/门禁提供服务接口
type InterfaceSuiteService interface {
	CreateBuzzer(buzzer *models.Buzzer) error
	GetAllBuzzers(page, pageSize int) ([]models.Buzzer, int64, error)
	CreateSuite(buzzerID uint, unit string) (*models.Suite, error)
	GetAllSuites(page, pageSize int) ([]models.Suite, int64, error)
	GetSuiteByID(id uint) (*models.Suite, error)
	GetSuiteBuzzes(suiteID uint, page, pageSize int) ([]models.Buzz, int64, error)
}

// SuiteService 提供套房和门禁设备相关的服务
type SuiteService struct {
	DB          *gorm.DB
	Config      *config.Config
	BuzzService InterfaceBuzzService
}

// NewSuiteService 创建一个新的套房服务
func NewSuiteService(db *gorm.DB, cfg *config.Config, buzzService InterfaceBuzzService) InterfaceSuiteService {
	return &SuiteService{
		DB:          db,
		Config:      cfg,
		BuzzService: buzzService,
	}
}

// 1 CreateBuzzer 创建门禁设备。电话号码留空，激活流程完成时绑定
func (s *SuiteService) CreateBuzzer(buzzer *models.Buzzer) error {
	return s.DB.Create(buzzer).Error
}

// 2 GetAllBuzzers 获取所有门禁设备，支持分页
func (s *SuiteService) GetAllBuzzers(page, pageSize int) ([]models.Buzzer, int64, error) {
	var buzzers []models.Buzzer
	var total int64

	if err := s.DB.Model(&models.Buzzer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Suites").
		Order("id").
		Limit(pageSize).Offset(offset).
		Find(&buzzers).Error; err != nil {
		return nil, 0, err
	}

	return buzzers, total, nil
}

// 3 CreateSuite 在指定门禁下创建套房：
// 分配一条该门禁下未占用的线路，并生成一次性激活码
func (s *SuiteService) CreateSuite(buzzerID uint, unit string) (*models.Suite, error) {
	var buzzer models.Buzzer
	if err := s.DB.First(&buzzer, buzzerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("门禁设备不存在")
		}
		return nil, err
	}

	line, err := s.BuzzService.FindAvailableLineForBuzzer(buzzerID)
	if err != nil {
		return nil, err
	}

	activationCode := utils.GenerateActivationCode()
	suite := models.Suite{
		Unit:           unit,
		BuzzerID:       buzzerID,
		LineID:         line.ID,
		ActivationCode: &activationCode,
	}
	if err := s.DB.Create(&suite).Error; err != nil {
		return nil, err
	}

	suite.Buzzer = &buzzer
	suite.Line = line
	return &suite, nil
}

// 4 GetAllSuites 获取所有套房，支持分页
func (s *SuiteService) GetAllSuites(page, pageSize int) ([]models.Suite, int64, error) {
	var suites []models.Suite
	var total int64

	if err := s.DB.Model(&models.Suite{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Buzzer").Preload("Line").
		Order("id").
		Limit(pageSize).Offset(offset).
		Find(&suites).Error; err != nil {
		return nil, 0, err
	}

	return suites, total, nil
}

// 5 GetSuiteByID 根据ID获取套房及其关联
func (s *SuiteService) GetSuiteByID(id uint) (*models.Suite, error) {
	var suite models.Suite
	if err := s.DB.Preload("Buzzer").Preload("Line").
		Preload("People").Preload("People.Person").
		First(&suite, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("套房不存在")
		}
		return nil, err
	}
	return &suite, nil
}

// 6 GetSuiteBuzzes 获取套房的呼叫历史，支持分页
func (s *SuiteService) GetSuiteBuzzes(suiteID uint, page, pageSize int) ([]models.Buzz, int64, error) {
	var buzzes []models.Buzz
	var total int64

	if err := s.DB.Model(&models.Buzz{}).
		Where("suite_id = ?", suiteID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Match").Preload("Match.Person").
		Where("suite_id = ?", suiteID).
		Order("call_start DESC").
		Limit(pageSize).Offset(offset).
		Find(&buzzes).Error; err != nil {
		return nil, 0, err
	}

	return buzzes, total, nil
}
