package utils

import (
	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/random"
)

// MD5 MD5加密
func MD5(s string) string {
	return cryptor.Md5String(s)
}

// EncodePassword 密码加盐哈希：md5(明文 + 盐)
func EncodePassword(password, salt string) string {
	return MD5(password + salt)
}

// RandomSalt 生成32位随机盐
func RandomSalt() string {
	return random.RandString(32)
}

// RandomString 生成指定长度的随机字符串
func RandomString(length int) string {
	return random.RandString(length)
}

// RandomNumeral 生成指定长度的随机数字串
func RandomNumeral(length int) string {
	return random.RandNumeral(length)
}

// SHA256 SHA256哈希
func SHA256(s string) string {
	return cryptor.Sha256(s)
}
