package utils

import "github.com/mojocn/base64Captcha"

// 注册登录表单用的数字验证码，答案存在内存里，进程重启后全部失效
var (
	captchaStore  = base64Captcha.DefaultMemStore
	captchaDriver = base64Captcha.NewDriverDigit(80, 240, 4, 0.7, 80)
)

// MakeCaptcha 生成一张验证码图片，返回 id 和图片的 base64 内容
func MakeCaptcha() (id, b64s, answer string, err error) {
	return base64Captcha.NewCaptcha(captchaDriver, captchaStore).Generate()
}

// VerifyCaptcha 校验通过后答案即作废，防止重放
func VerifyCaptcha(id, answer string) bool {
	return captchaStore.Verify(id, answer, true)
}
