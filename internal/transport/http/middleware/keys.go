package middleware

const KeyRequestID = "X-Request-ID"

// 超过该长度的外部 request id 直接丢弃重新生成
const maxRequestIDLen = 64
