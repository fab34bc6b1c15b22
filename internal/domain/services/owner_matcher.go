package services

import (
	"regexp"

	"dingdong-http-service/internal/domain/models"
)

// testName 判断姓名片段是否出现在语音文本中。
// 大小写不敏感；姓名先经过转义，含正则元字符的名字不会导致
// 匹配崩溃或产生意外的通配行为
func testName(name, text string) bool {
	if name == "" || text == "" {
		return false
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(name))
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// MatchOwner 在套房owner中查找语音文本唯一指向的住户。
// 逐层尝试：全名、名、姓、昵称，每一层只有恰好命中一个候选人才算匹配；
// 零个或多个命中都落到下一层。没有任何一层命中唯一结果返回nil，
// 歧义不在这里猜测解决
func MatchOwner(text string, owners []models.PersonSuite) *models.PersonSuite {
	if text == "" {
		return nil
	}

	// 没有任何姓名字段的住户永远无法匹配，也不应计入歧义
	named := make([]models.PersonSuite, 0, len(owners))
	for _, owner := range owners {
		if owner.Person != nil && owner.Person.HasName() {
			named = append(named, owner)
		}
	}

	if hit := matchUnique(text, named, func(p *models.Person) string { return p.FullName() }); hit != nil {
		return hit
	}
	if hit := matchUnique(text, named, func(p *models.Person) string { return p.FirstName }); hit != nil {
		return hit
	}
	if hit := matchUnique(text, named, func(p *models.Person) string { return p.LastName }); hit != nil {
		return hit
	}
	if hit := matchUnique(text, named, func(p *models.Person) string { return p.Nickname }); hit != nil {
		return hit
	}
	return nil
}

// matchUnique 在一层内查找命中，仅当恰好一个候选人命中时返回
func matchUnique(text string, owners []models.PersonSuite, nameOf func(*models.Person) string) *models.PersonSuite {
	var hit *models.PersonSuite
	count := 0
	for i := range owners {
		if testName(nameOf(owners[i].Person), text) {
			hit = &owners[i]
			count++
		}
	}
	if count == 1 {
		return hit
	}
	return nil
}

// BuildHints 把owner的姓名拼成语音识别提示词
func BuildHints(owners []models.PersonSuite) string {
	hints := ""
	for _, owner := range owners {
		if owner.Person == nil {
			continue
		}
		name := owner.Person.FullName()
		if name == "" {
			continue
		}
		if hints != "" {
			hints += " "
		}
		hints += name
	}
	return hints
}
