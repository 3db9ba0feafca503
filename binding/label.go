package binding

import (
	"fmt"
	"strconv"
)

// IncrementLabel 将字符串末尾的数字或字母序列增加 delta。
//
// 数字后缀按整数递增并保留前导零宽度（"09" → "10"，"007" → "008"），结果不小于 0。
// 字母后缀按双射 26 进制递增并进位（"Z" → "AA"，"az" → "ba"），
// 大小写取自最后一个字母，结果不小于 "A"。没有字母数字后缀时原样返回。
func IncrementLabel(s string, delta int) string {
	if delta == 0 || s == "" {
		return s
	}
	if i := suffixStart(s, isDigit); i < len(s) {
		return s[:i] + incrementDigits(s[i:], delta)
	}
	if i := suffixStart(s, isLetter); i < len(s) {
		return s[:i] + incrementLetters(s[i:], delta)
	}
	return s
}

func suffixStart(s string, pred func(byte) bool) int {
	i := len(s)
	for i > 0 && pred(s[i-1]) {
		i--
	}
	return i
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

func incrementDigits(digits string, delta int) string {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	n += int64(delta)
	if n < 0 {
		n = 0
	}
	if len(digits) > 1 && digits[0] == '0' {
		return fmt.Sprintf("%0*d", len(digits), n)
	}
	return strconv.FormatInt(n, 10)
}

func incrementLetters(letters string, delta int) string {
	base := byte('A')
	if last := letters[len(letters)-1]; last >= 'a' && last <= 'z' {
		base = 'a'
	}
	var n int64
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' {
			c -= 'a' - 'A'
		}
		n = n*26 + int64(c-'A'+1)
		if n > 1<<50 {
			return letters
		}
	}
	n += int64(delta)
	if n < 1 {
		n = 1
	}
	var out []byte
	for n > 0 {
		n--
		out = append(out, base+byte(n%26))
		n /= 26
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
