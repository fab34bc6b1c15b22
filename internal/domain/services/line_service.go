package services

import (
	"errors"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// InterfaceLineService 定义线路服务接口
type InterfaceLineService interface {
	GetAllLines(page, pageSize int) ([]models.Line, int64, error)
	GetLineByID(id uint) (*models.Line, error)
	CreateLine(line *models.Line) error
	DeleteLine(id uint) error
}

// LineService 提供线路相关的服务
type LineService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewLineService 创建一个新的线路服务
func NewLineService(db *gorm.DB, cfg *config.Config) InterfaceLineService {
	return &LineService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllLines 获取所有线路，支持分页
func (s *LineService) GetAllLines(page, pageSize int) ([]models.Line, int64, error) {
	var lines []models.Line
	var total int64

	if err := s.DB.Model(&models.Line{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Suites").
		Order("id").
		Limit(pageSize).Offset(offset).
		Find(&lines).Error; err != nil {
		return nil, 0, err
	}

	return lines, total, nil
}

// 2 GetLineByID 根据ID获取线路
func (s *LineService) GetLineByID(id uint) (*models.Line, error) {
	var line models.Line
	if err := s.DB.Preload("Suites").First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("线路不存在")
		}
		return nil, err
	}
	return &line, nil
}

// 3 CreateLine 创建新线路
func (s *LineService) CreateLine(line *models.Line) error {
	var count int64
	if err := s.DB.Model(&models.Line{}).
		Where("phone_number = ?", line.PhoneNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("线路已存在")
	}
	return s.DB.Create(line).Error
}

// 4 DeleteLine 删除线路，仍被套房引用的线路不可删除
func (s *LineService) DeleteLine(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Suite{}).
		Where("line_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("线路仍被套房使用，无法删除")
	}
	return s.DB.Delete(&models.Line{}, id).Error
}
