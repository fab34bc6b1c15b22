package services

import (
	"errors"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/pkg/logger"
	"dingdong-http-service/utils"

	"gorm.io/gorm"
)

// InterfacePersonService 定义住户服务接口
type InterfacePersonService interface {
	GetAllPersons(page, pageSize int, search string) ([]models.Person, int64, error)
	GetPersonByID(id uint) (*models.Person, error)
	CreatePerson(person *models.Person) error
	UpsertPersonByPhone(phoneNumber string) (*models.Person, error)
	AssociateToSuite(personID, suiteID uint, role models.PersonSuiteRole, unlockCode string) (*models.PersonSuite, error)
}

// PersonService 提供住户相关的服务
type PersonService struct {
	DB            *gorm.DB
	Config        *config.Config
	TwilioService InterfaceTwilioService
}

// NewPersonService 创建一个新的住户服务
func NewPersonService(db *gorm.DB, cfg *config.Config, twilioService InterfaceTwilioService) InterfacePersonService {
	return &PersonService{
		DB:            db,
		Config:        cfg,
		TwilioService: twilioService,
	}
}

// 1 GetAllPersons 获取所有住户，支持分页和搜索
func (s *PersonService) GetAllPersons(page, pageSize int, search string) ([]models.Person, int64, error) {
	var persons []models.Person
	var total int64

	query := s.DB.Model(&models.Person{})
	if search != "" {
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR nickname LIKE ? OR phone_number LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("id").
		Limit(pageSize).Offset(offset).
		Find(&persons).Error; err != nil {
		return nil, 0, err
	}

	return persons, total, nil
}

// 2 GetPersonByID 根据ID获取住户
func (s *PersonService) GetPersonByID(id uint) (*models.Person, error) {
	var person models.Person
	if err := s.DB.Preload("Suites").Preload("Suites.Suite").First(&person, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("住户不存在")
		}
		return nil, err
	}
	return &person, nil
}

// 3 CreatePerson 创建新住户，电话号码全局唯一
func (s *PersonService) CreatePerson(person *models.Person) error {
	if person.PhoneNumber != nil {
		var count int64
		if err := s.DB.Model(&models.Person{}).
			Where("phone_number = ?", *person.PhoneNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("住户已存在")
		}
	}
	return s.DB.Create(person).Error
}

// 4 UpsertPersonByPhone 按电话号码查找住户，不存在则创建。
// 创建前通过号码归属查询预填充姓名；查找和创建在同一事务内完成
func (s *PersonService) UpsertPersonByPhone(phoneNumber string) (*models.Person, error) {
	var person models.Person
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("phone_number = ?", phoneNumber).First(&person).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		firstName, lastName, lookupErr := s.TwilioService.LookupNumber(phoneNumber)
		if lookupErr != nil {
			// 查询失败不阻止创建，姓名留空
			logger.Warning("号码归属查询失败 %s: %v", phoneNumber, lookupErr)
		}

		person = models.Person{
			FirstName:   firstName,
			LastName:    lastName,
			PhoneNumber: &phoneNumber,
		}
		return tx.Create(&person).Error
	})
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// 5 AssociateToSuite 把住户关联到套房。(personId, suiteId)组合唯一；
// 提供开锁码时存储其bcrypt哈希
func (s *PersonService) AssociateToSuite(personID, suiteID uint, role models.PersonSuiteRole, unlockCode string) (*models.PersonSuite, error) {
	var count int64
	if err := s.DB.Model(&models.PersonSuite{}).
		Where("person_id = ? AND suite_id = ?", personID, suiteID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("住户与套房的关联已存在")
	}

	ps := models.PersonSuite{
		PersonID: personID,
		SuiteID:  suiteID,
		Role:     role,
	}
	if unlockCode != "" {
		hashed, err := utils.HashUnlockCode(unlockCode)
		if err != nil {
			return nil, err
		}
		ps.HashedUnlockCode = &hashed
	}

	if err := s.DB.Create(&ps).Error; err != nil {
		return nil, err
	}
	return &ps, nil
}
