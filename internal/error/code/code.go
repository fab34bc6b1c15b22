package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrSignatureInvalid - 403: Twilio签名校验失败.
	ErrSignatureInvalid
)

// 线路相关错误码 (101xxx).
const (
	// ErrLineNotFound - 404: 线路不存在.
	ErrLineNotFound int = iota + 101000
	// ErrLineAlreadyExist - 400: 线路已存在.
	ErrLineAlreadyExist
	// ErrNoAvailableLine - 400: 无可分配线路.
	ErrNoAvailableLine
)

// 门禁/套房相关错误码 (102xxx).
const (
	// ErrBuzzerNotFound - 404: 门禁设备不存在.
	ErrBuzzerNotFound int = iota + 102000
	// ErrSuiteNotFound - 404: 套房不存在.
	ErrSuiteNotFound
	// ErrSuiteAlreadyExist - 400: 套房已存在.
	ErrSuiteAlreadyExist
	// ErrActivationCodeInvalid - 400: 激活码无效.
	ErrActivationCodeInvalid
)

// 住户相关错误码 (103xxx).
const (
	// ErrPersonNotFound - 404: 住户不存在.
	ErrPersonNotFound int = iota + 103000
	// ErrPersonAlreadyExist - 400: 住户已存在.
	ErrPersonAlreadyExist
	// ErrPersonSuiteExists - 400: 住户与套房的关联已存在.
	ErrPersonSuiteExists
)

// 呼叫相关错误码 (104xxx).
const (
	// ErrBuzzNotFound - 404: 呼叫记录不存在.
	ErrBuzzNotFound int = iota + 104000
	// ErrBuzzNoMatch - 400: 呼叫尚未匹配到住户.
	ErrBuzzNoMatch
	// ErrMatchedPersonNoPhone - 500: 匹配住户缺少电话号码.
	ErrMatchedPersonNoPhone
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 用户相关错误码 (106xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 106000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)
