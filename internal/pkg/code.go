package pkg

import "crypto/rand"

// RandDigits 生成n位数字验证码。用crypto/rand，
// 拒绝采样去掉模偏差
func RandDigits(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, 1)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		// 250..255丢弃重采
		if buf[0] >= 250 {
			continue
		}
		out = append(out, '0'+buf[0]%10)
	}
	return string(out), nil
}
