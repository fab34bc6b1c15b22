package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:          "成功",
	ErrUnknown:          "未知错误",
	ErrBind:             "请求参数绑定错误",
	ErrValidation:       "请求参数验证错误",
	ErrTokenInvalid:     "无效的认证令牌",
	ErrTooManyRequests:  "请求频率过高",
	ErrSignatureInvalid: "Twilio签名校验失败",

	// 线路相关错误码
	ErrLineNotFound:     "线路不存在",
	ErrLineAlreadyExist: "线路已存在",
	ErrNoAvailableLine:  "无可分配线路",

	// 门禁/套房相关错误码
	ErrBuzzerNotFound:        "门禁设备不存在",
	ErrSuiteNotFound:         "套房不存在",
	ErrSuiteAlreadyExist:     "套房已存在",
	ErrActivationCodeInvalid: "激活码无效",

	// 住户相关错误码
	ErrPersonNotFound:     "住户不存在",
	ErrPersonAlreadyExist: "住户已存在",
	ErrPersonSuiteExists:  "住户与套房的关联已存在",

	// 呼叫相关错误码
	ErrBuzzNotFound:         "呼叫记录不存在",
	ErrBuzzNoMatch:          "呼叫尚未匹配到住户",
	ErrMatchedPersonNoPhone: "匹配住户缺少电话号码",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户密码错误",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:          StatusOK,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrTooManyRequests:  StatusTooManyRequests,
	ErrSignatureInvalid: StatusForbidden,

	// 线路相关错误码
	ErrLineNotFound:     StatusNotFound,
	ErrLineAlreadyExist: StatusBadRequest,
	ErrNoAvailableLine:  StatusBadRequest,

	// 门禁/套房相关错误码
	ErrBuzzerNotFound:        StatusNotFound,
	ErrSuiteNotFound:         StatusNotFound,
	ErrSuiteAlreadyExist:     StatusBadRequest,
	ErrActivationCodeInvalid: StatusBadRequest,

	// 住户相关错误码
	ErrPersonNotFound:     StatusNotFound,
	ErrPersonAlreadyExist: StatusBadRequest,
	ErrPersonSuiteExists:  StatusBadRequest,

	// 呼叫相关错误码
	ErrBuzzNotFound:         StatusNotFound,
	ErrBuzzNoMatch:          StatusBadRequest,
	ErrMatchedPersonNoPhone: StatusInternalServerError,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
