package constants

const (
	CHANNEL_SIZE               = 100 // 通道大小
	MESSAGE_PAGE_SIZE          = 20  // 消息分页默认条数
	MESSAGE_PAGE_MAX_SIZE      = 100 // 消息分页最大条数
	CONTENT_MAX_LEN            = 2000 // 文本消息最大长度
	REDIS_TIMEOUT              = 1   // redis timeout (分钟)
	PRESENCE_TTL_MINUTES       = 5   // 在线状态过期时间（分钟）
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
)
